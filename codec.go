package stash

// Codec provides content-type aware marshaling for opaque types that
// should not go through the default struct-field REDUCE fallback — for
// example, types with unexported invariants that must round-trip through
// their own (Un)MarshalJSON-equivalent rather than raw field assignment.
// A registered Codec gives its type a REDUCE encoding whose constructor
// is a GLOBAL reference to the codec's content type, and whose sole
// argument is the marshaled payload.
//
// Concrete providers live in stash/json, stash/xml, stash/yaml,
// stash/msgpack, and stash/bson.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}
