package lsm

import (
	"fmt"

	"github.com/zoobzio/stash"
)

func newNotFound(k stash.Key) error {
	return fmt.Errorf("lsm: key %s: %w", k, stash.ErrNotFound)
}

func newIOError(k stash.Key, cause error) error {
	return fmt.Errorf("lsm: key %s: %w: %w", k, stash.ErrIO, cause)
}
