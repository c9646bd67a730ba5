package stash

import (
	"github.com/klauspost/compress/zstd"
)

// compressThreshold is the minimum payload size, in bytes, worth paying
// zstd's framing overhead for. Below it, blobs are stored raw.
const compressThreshold = 128

const (
	framingRaw        byte = 0
	framingCompressed byte = 1
)

// Compressed wraps m with transparent zstd compression: PutBlob
// compresses before handing bytes to m, GetBlob decompresses what it
// gets back. Content addressing is over whatever bytes actually cross
// the Mapping boundary, so a Compressed(m) store computes different keys
// than m would for the same values — each Mapping instance is its own
// closed content-addressed space, and nothing requires keys to be
// portable across differently configured stores.
func Compressed(m Mapping) Mapping {
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	return &compressedMapping{inner: m, enc: enc, dec: dec}
}

type compressedMapping struct {
	inner Mapping
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func (c *compressedMapping) PutBlob(b []byte) (Key, error) {
	if len(b) < compressThreshold {
		framed := make([]byte, 0, len(b)+1)
		framed = append(framed, framingRaw)
		framed = append(framed, b...)
		return c.inner.PutBlob(framed)
	}

	compressed := c.enc.EncodeAll(b, make([]byte, 0, len(b)))
	framed := make([]byte, 0, len(compressed)+1)
	framed = append(framed, framingCompressed)
	framed = append(framed, compressed...)
	return c.inner.PutBlob(framed)
}

// Flush forwards to the wrapped Mapping when it implements Flusher, so
// Compressed(lsm.Open(...)) still flushes on each top-level Dump.
func (c *compressedMapping) Flush() error {
	if f, ok := c.inner.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

func (c *compressedMapping) GetBlob(k Key) ([]byte, error) {
	framed, err := c.inner.GetBlob(k)
	if err != nil {
		return nil, err
	}
	if len(framed) == 0 {
		return nil, newDecodeError("compressed mapping: empty framed blob")
	}
	switch framed[0] {
	case framingRaw:
		return framed[1:], nil
	case framingCompressed:
		out, err := c.dec.DecodeAll(framed[1:], nil)
		if err != nil {
			return nil, newDecodeError("compressed mapping: " + err.Error())
		}
		return out, nil
	default:
		return nil, newDecodeError("compressed mapping: unknown framing byte")
	}
}
