// Package nildb provides a Mapping that stores nothing: PutBlob computes
// and returns a blob's Key without retaining the bytes, and GetBlob always
// reports the key missing. Dumping against it yields the same Key as
// stash.Hash (which uses its own internal equivalent), for use wherever
// only the content Key matters, never retrieval.
package nildb

import (
	"fmt"

	"github.com/zoobzio/stash"
)

// DB is a Mapping that discards every blob it's given.
type DB struct {
	keygen stash.KeyGen
}

// New returns a DB using kg to compute keys. A nil kg defaults to
// stash.Blake3KeyGen.
func New(kg stash.KeyGen) *DB {
	if kg == nil {
		kg = stash.Blake3KeyGen{}
	}
	return &DB{keygen: kg}
}

// PutBlob computes b's Key and returns it without storing b.
func (d *DB) PutBlob(b []byte) (stash.Key, error) {
	return d.keygen.Digest(b), nil
}

// GetBlob always reports k as not found.
func (d *DB) GetBlob(k stash.Key) ([]byte, error) {
	return nil, fmt.Errorf("key %s: %w", k, stash.ErrNotFound)
}
