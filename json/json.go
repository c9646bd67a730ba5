// Package json provides a stash.Codec backed by encoding/json, for
// REDUCE-based encoding of types stash has no structural tag for.
package json

import (
	"encoding/json"

	"github.com/zoobzio/stash"
)

// jsonCodec implements stash.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() stash.Codec {
	return &jsonCodec{}
}

func (c *jsonCodec) ContentType() string {
	return "application/json"
}

func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
