// Package xml wraps encoding/xml as a stash.Codec.
package xml

import (
	"encoding/xml"

	"github.com/zoobzio/stash"
)

type xmlCodec struct{}

// New returns a Codec that marshals through encoding/xml. Struct fields
// without an `xml:` tag fall back to their Go field names as element
// names, same as encoding/xml itself.
func New() stash.Codec {
	return &xmlCodec{}
}

func (c *xmlCodec) ContentType() string { return "application/xml" }

func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	return xml.Marshal(v)
}

func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}
