package stash

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"
)

// Blake3KeyGen computes BLAKE3-256 digests. It is the default KeyGen used
// when none is supplied to Dump, Load, or Hash.
type Blake3KeyGen struct{}

// Digest implements KeyGen.
func (Blake3KeyGen) Digest(b []byte) Key {
	sum := blake3.Sum256(b)
	return newKey(sum[:])
}

// NBytes implements KeyGen.
func (Blake3KeyGen) NBytes() int { return 32 }

// KeyFromBytes implements KeyGen.
func (Blake3KeyGen) KeyFromBytes(b []byte) (Key, error) {
	if len(b) != 32 {
		return Key{}, fmt.Errorf("%w: blake3 keys are 32 bytes, got %d", ErrKeyLength, len(b))
	}
	return newKey(b), nil
}

// Blake2bKeyGen computes BLAKE2b-256 digests. It exists for deployments
// that standardize on golang.org/x/crypto and would rather not pull in a
// dedicated BLAKE3 module.
type Blake2bKeyGen struct{}

// Digest implements KeyGen.
func (Blake2bKeyGen) Digest(b []byte) Key {
	sum := blake2b.Sum256(b)
	return newKey(sum[:])
}

// NBytes implements KeyGen.
func (Blake2bKeyGen) NBytes() int { return 32 }

// KeyFromBytes implements KeyGen.
func (Blake2bKeyGen) KeyFromBytes(b []byte) (Key, error) {
	if len(b) != 32 {
		return Key{}, fmt.Errorf("%w: blake2b keys are 32 bytes, got %d", ErrKeyLength, len(b))
	}
	return newKey(b), nil
}
