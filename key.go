package stash

import (
	"encoding/hex"
	"errors"
)

// ErrKeyLength indicates a byte slice of the wrong width was handed to a
// KeyGen's KeyFromBytes.
var ErrKeyLength = errors.New("invalid key length")

// Key is a fixed-width content digest identifying a stored blob. Keys are
// comparable and may be used directly as map keys.
type Key struct {
	b string
}

func newKey(b []byte) Key {
	return Key{b: string(b)}
}

// Bytes returns the raw digest bytes.
func (k Key) Bytes() []byte {
	if k.b == "" {
		return nil
	}
	return []byte(k.b)
}

// String returns the hex-encoded digest.
func (k Key) String() string {
	return hex.EncodeToString([]byte(k.b))
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k.b == ""
}

// KeyGen computes a fixed-width cryptographic digest over a byte string.
// A Mapping implementation and the Serializer/Deserializer pair that read
// and write it must agree on the same KeyGen, since chunk references are
// framed at exactly NBytes() width.
type KeyGen interface {
	// Digest returns the content key for b.
	Digest(b []byte) Key
	// NBytes returns the fixed width, in bytes, of keys this KeyGen
	// produces.
	NBytes() int
	// KeyFromBytes validates that b has length NBytes() and wraps it as
	// a Key, without recomputing the digest.
	KeyFromBytes(b []byte) (Key, error)
}
