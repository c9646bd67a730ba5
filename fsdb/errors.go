package fsdb

import (
	"fmt"

	"github.com/zoobzio/stash"
)

func newNotFound(k stash.Key) error {
	return fmt.Errorf("fsdb: key %s: %w", k, stash.ErrNotFound)
}

func newCollision(k stash.Key) error {
	return fmt.Errorf("fsdb: key %s: %w", k, stash.ErrCollision)
}

func newIOError(k stash.Key, cause error) error {
	return fmt.Errorf("fsdb: key %s: %w: %w", k, stash.ErrIO, cause)
}
