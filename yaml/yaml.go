package yaml

import (
	"github.com/zoobzio/stash"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements stash.Codec using gopkg.in/yaml.v3.
type yamlCodec struct{}

// New returns a YAML codec, registerable via Registry.RegisterCodec.
func New() stash.Codec {
	return &yamlCodec{}
}

func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
