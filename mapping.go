package stash

// Mapping is the sole storage boundary stash depends on: a
// content-addressed blob store. PutBlob is idempotent — storing the same
// bytes twice returns the same Key and must not error — and GetBlob
// returns an error wrapping ErrNotFound (checkable with errors.Is) for an
// absent Key.
//
// Implementations: RAM (package stash/ram), Fs (package stash/fsdb), LSM
// (package stash/lsm, backed by an embedded log-structured merge tree),
// and Nil (package stash/nildb, hash-only, no persistence). Compressed
// wraps any Mapping with transparent zstd compression.
type Mapping interface {
	// PutBlob stores b and returns its content key. Calling PutBlob again
	// with identical bytes must return the same Key without error.
	PutBlob(b []byte) (Key, error)
	// GetBlob retrieves the bytes previously stored under k, or an error
	// wrapping ErrNotFound if no such blob exists.
	GetBlob(k Key) ([]byte, error)
}

// Flusher is an optional capability a Mapping may implement when it
// buffers writes before they become durable. Dump calls Flush after a
// successful top-level PutBlob when m implements Flusher, so the caller
// doesn't have to know which Mapping it was handed. stash/lsm's DB is the
// only store that implements it, and Compressed forwards Flush to the
// Mapping it wraps; RAM, Fs, and Nil have nothing to flush.
type Flusher interface {
	Flush() error
}
