// Package msgpack provides a stash.Codec over a compact binary payload
// instead of the text formats json/xml/yaml produce.
package msgpack

import (
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/stash"
)

type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() stash.Codec {
	return &msgpackCodec{}
}

func (c *msgpackCodec) ContentType() string { return "application/msgpack" }

func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
