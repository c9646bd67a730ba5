// Package fsdb provides a filesystem-backed Mapping. Each blob is stored
// at a path derived from its Key, split into a two-level hex-encoded
// directory tree so no single directory accumulates one entry per blob.
package fsdb

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/zoobzio/stash"
)

// streamCompareThreshold is the blob size above which an existing file's
// content is compared against incoming bytes a buffer at a time, rather
// than read fully into memory first.
const streamCompareThreshold = 128 * 1024

// DB is a Mapping rooted at a directory on disk.
type DB struct {
	root   string
	keygen stash.KeyGen
}

// New returns a DB rooted at root, using kg to compute keys. A nil kg
// defaults to stash.Blake3KeyGen. root is created on first write if it
// doesn't already exist.
func New(root string, kg stash.KeyGen) *DB {
	if kg == nil {
		kg = stash.Blake3KeyGen{}
	}
	return &DB{root: root, keygen: kg}
}

// pathFor splits k's bytes as (first byte, remaining bytes), hex-encodes
// each half, and joins them under root as dir/file.
func (d *DB) pathFor(k stash.Key) string {
	b := k.Bytes()
	dir := hex.EncodeToString(b[:1])
	file := hex.EncodeToString(b[1:])
	return filepath.Join(d.root, dir, file)
}

// PutBlob writes b under the path derived from its Key. Writing is
// create-exclusive: a blob already on disk at that path is left untouched
// (content addressing makes a second write of identical bytes a no-op) but
// its content is compared against b first, since a Key collision between
// different bytes would otherwise silently keep the wrong blob.
func (d *DB) PutBlob(b []byte) (stash.Key, error) {
	k := d.keygen.Digest(b)
	path := d.pathFor(k)

	if same, err := d.sameContent(path, b); err != nil {
		if !os.IsNotExist(err) {
			return stash.Key{}, newIOError(k, err)
		}
	} else if same {
		return k, nil
	} else {
		return stash.Key{}, newCollision(k)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stash.Key{}, newIOError(k, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Lost a race with a concurrent writer of the same blob.
			return k, nil
		}
		return stash.Key{}, newIOError(k, err)
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		return stash.Key{}, newIOError(k, err)
	}
	return k, nil
}

// sameContent reports whether the file at path holds exactly b, comparing
// a buffer at a time for large blobs instead of reading the whole file
// into memory up front.
func (d *DB) sameContent(path string, b []byte) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() != int64(len(b)) {
		return false, nil
	}
	if info.Size() < streamCompareThreshold {
		got, err := io.ReadAll(f)
		if err != nil {
			return false, err
		}
		return bytes.Equal(got, b), nil
	}

	buf := make([]byte, 128*1024)
	rem := b
	for len(rem) > 0 {
		n, err := f.Read(buf)
		if n > 0 {
			if !bytes.Equal(buf[:n], rem[:n]) {
				return false, nil
			}
			rem = rem[n:]
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return false, err
		}
	}
	return len(rem) == 0, nil
}

// GetBlob reads the blob stored under k.
func (d *DB) GetBlob(k stash.Key) ([]byte, error) {
	b, err := os.ReadFile(d.pathFor(k))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newNotFound(k)
		}
		return nil, newIOError(k, err)
	}
	return b, nil
}
