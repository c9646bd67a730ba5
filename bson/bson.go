package bson

import (
	"github.com/zoobzio/stash"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements stash.Codec via go.mongodb.org/mongo-driver/bson,
// useful when a type's natural persistence format is already BSON (e.g.
// values shared with a MongoDB-backed component elsewhere in a system).
type bsonCodec struct{}

// New returns a BSON codec.
func New() stash.Codec {
	return &bsonCodec{}
}

func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}
