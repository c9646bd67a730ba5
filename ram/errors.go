package ram

import (
	"fmt"

	"github.com/zoobzio/stash"
)

func newNotFound(k stash.Key) error {
	return fmt.Errorf("ram: key %s: %w", k, stash.ErrNotFound)
}

func newCollision(k stash.Key) error {
	return fmt.Errorf("ram: key %s: %w", k, stash.ErrCollision)
}
