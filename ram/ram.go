// Package ram provides an in-memory Mapping backed by a striped map: blobs
// are distributed across a fixed number of shards, each guarded by its own
// mutex, so concurrent Dump/Load calls against unrelated keys don't
// contend on a single lock.
package ram

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zoobzio/stash"
)

const shardCount = 32

type shard struct {
	mu    sync.RWMutex
	blobs map[stash.Key][]byte
}

// DB is an in-memory, process-local Mapping. Nothing it stores survives
// process exit.
type DB struct {
	keygen stash.KeyGen
	shards [shardCount]*shard
}

// New returns an empty DB using kg to compute keys. A nil kg defaults to
// stash.Blake3KeyGen.
func New(kg stash.KeyGen) *DB {
	if kg == nil {
		kg = stash.Blake3KeyGen{}
	}
	d := &DB{keygen: kg}
	for i := range d.shards {
		d.shards[i] = &shard{blobs: make(map[stash.Key][]byte)}
	}
	return d
}

// shardFor picks a shard for k. Key bytes are already a cryptographic
// digest, so a cheap non-cryptographic hash over them is enough to spread
// keys evenly across shards — no second cryptographic hash is needed.
func (d *DB) shardFor(k stash.Key) *shard {
	h := xxhash.Sum64(k.Bytes())
	return d.shards[h%uint64(shardCount)]
}

// PutBlob stores b and returns its Key. Storing the same bytes twice is a
// no-op; storing different bytes under a colliding Key reports
// stash.ErrCollision.
func (d *DB) PutBlob(b []byte) (stash.Key, error) {
	k := d.keygen.Digest(b)
	s := d.shardFor(k)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.blobs[k]; ok {
		if string(existing) != string(b) {
			return stash.Key{}, newCollision(k)
		}
		return k, nil
	}
	s.blobs[k] = append([]byte(nil), b...)
	return k, nil
}

// GetBlob retrieves the blob stored under k.
func (d *DB) GetBlob(k stash.Key) ([]byte, error) {
	s := d.shardFor(k)

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[k]
	if !ok {
		return nil, newNotFound(k)
	}
	return append([]byte(nil), b...), nil
}

// Len returns the number of distinct blobs currently stored.
func (d *DB) Len() int {
	n := 0
	for _, s := range d.shards {
		s.mu.RLock()
		n += len(s.blobs)
		s.mu.RUnlock()
	}
	return n
}
