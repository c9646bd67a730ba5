// Package lsm provides a Mapping backed by an embedded LSM-tree key-value
// store (badger). It's the durable, single-process counterpart to
// stash/fsdb: writes land in badger's value log and Flush syncs that log
// to disk.
package lsm

import (
	"errors"

	"github.com/dgraph-io/badger/v2"

	"github.com/zoobzio/stash"
)

// DB is a Mapping backed by a badger tree rooted at a directory on disk.
type DB struct {
	tree   *badger.DB
	keygen stash.KeyGen
}

// Open opens (creating if necessary) a badger tree at path, using kg to
// compute keys. A nil kg defaults to stash.Blake3KeyGen. Callers own the
// returned DB and must Close it.
func Open(path string, kg stash.KeyGen) (*DB, error) {
	if kg == nil {
		kg = stash.Blake3KeyGen{}
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	tree, err := badger.Open(opts)
	if err != nil {
		return nil, newIOError(stash.Key{}, err)
	}
	return &DB{tree: tree, keygen: kg}, nil
}

// Close releases the underlying badger tree.
func (d *DB) Close() error {
	return d.tree.Close()
}

// Flush calls badger's Sync, which syncs the value log to disk, so blobs
// already accepted by PutBlob survive a crash.
func (d *DB) Flush() error {
	return d.tree.Sync()
}

// PutBlob stores b under its Key.
func (d *DB) PutBlob(b []byte) (stash.Key, error) {
	k := d.keygen.Digest(b)
	err := d.tree.Update(func(txn *badger.Txn) error {
		return txn.Set(k.Bytes(), b)
	})
	if err != nil {
		return stash.Key{}, newIOError(k, err)
	}
	return k, nil
}

// GetBlob retrieves the blob stored under k.
func (d *DB) GetBlob(k stash.Key) ([]byte, error) {
	var out []byte
	err := d.tree.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k.Bytes())
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, newNotFound(k)
		}
		return nil, newIOError(k, err)
	}
	return out, nil
}
