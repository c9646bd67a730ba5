package stash

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"math/big"
	"reflect"
	"sort"
)

// seenEntry records the Key a previously promoted value was stored
// under, plus the value itself — kept alive for the life of the dump so
// its identity handle (a pointer, map header, or slice header) cannot be
// recycled by the Go runtime and aliased onto an unrelated value.
type seenEntry struct {
	key Key
	val any
}

// serializer carries the mutable state of a single Dump call: the
// already-promoted identity table, the in-progress cycle-detection
// stack, and running counters reported in the completion signal.
type serializer struct {
	ctx      context.Context
	mapping  Mapping
	keygen   KeyGen
	registry *Registry

	seen    map[uintptr]seenEntry
	onStack map[uintptr]bool

	promoted int
	shared   int
}

func newSerializer(ctx context.Context, m Mapping, kg KeyGen, reg *Registry) *serializer {
	return &serializer{
		ctx:      ctx,
		mapping:  m,
		keygen:   kg,
		registry: reg,
		seen:     make(map[uintptr]seenEntry),
		onStack:  make(map[uintptr]bool),
	}
}

// identity returns a stable handle for reference-typed values. Plain
// value types (ints, strings, structs passed by value, arrays) have no
// Go-level identity distinct from their content, so ok is false for
// them — two equal value-type instances are indistinguishable by
// identity, and are never deduplicated against each other, only against
// themselves via structural equality of their encoded bytes landing in
// the same promoted blob.
func identity(rv reflect.Value) (uintptr, bool) {
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}

// encodeChunk renders v as a framed chunk: either an inline length-byte
// plus payload, or a zero byte plus a fixed-width key reference when the
// encoded payload exceeds 255 bytes.
func (s *serializer) encodeChunk(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	id, hasID := identity(rv)

	if hasID {
		if entry, ok := s.seen[id]; ok {
			// The address alone is not the handle: a sub-slice or a value of
			// another type can start at the same address.
			prev := reflect.ValueOf(entry.val)
			if prev.Type() == rv.Type() && (rv.Kind() != reflect.Slice || prev.Len() == rv.Len()) {
				s.shared++
				return refChunk(entry.key, s.keygen.NBytes()), nil
			}
		}
		if s.onStack[id] {
			return nil, ErrRecursion
		}
		s.onStack[id] = true
		defer delete(s.onStack, id)
	}

	b, err := s.encode(v)
	if err != nil {
		return nil, err
	}

	if len(b) <= 255 {
		out := make([]byte, 0, 1+len(b))
		out = append(out, byte(len(b)))
		return append(out, b...), nil
	}

	key, err := s.mapping.PutBlob(b)
	if err != nil {
		return nil, wrapMappingErr(err)
	}
	s.promoted++
	emitPromote(s.ctx, key, len(b))
	if hasID {
		s.seen[id] = seenEntry{key: key, val: v}
	}
	return refChunk(key, s.keygen.NBytes()), nil
}

func refChunk(k Key, nbytes int) []byte {
	out := make([]byte, 0, 1+nbytes)
	out = append(out, 0)
	return append(out, k.Bytes()...)
}

// encode renders v as a tagged blob: a single tag byte followed by its
// payload. Composite payloads are built from framed child chunks
// produced by encodeChunk.
func (s *serializer) encode(v any) ([]byte, error) {
	if v == nil {
		return []byte{byte(TagNone)}, nil
	}

	if t, ok := v.(reflect.Type); ok {
		return s.encodeGlobalType(t)
	}

	if red, ok := v.(Reducible); ok {
		rr, err := red.Reduce()
		if err != nil {
			return nil, err
		}
		return s.encodeReduceResult(rr)
	}

	switch vv := v.(type) {
	case ByteArray:
		return append([]byte{byte(TagByteArray)}, []byte(vv)...), nil
	case []byte:
		return append([]byte{byte(TagBytes)}, vv...), nil
	case Tuple:
		return s.encodeOrdered(TagTuple, reflect.ValueOf([]any(vv)))
	case Set:
		return s.encodeUnordered(TagSet, vv.Items())
	case FrozenSet:
		return s.encodeUnordered(TagFrozenSet, vv.Items())
	case GlobalRef:
		return append([]byte{byte(TagGlobal)}, []byte(vv)...), nil
	case *big.Int:
		return append([]byte{byte(TagInt)}, EncodeInt(vv)...), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return append([]byte{byte(TagString)}, []byte(rv.String())...), nil
	case reflect.Bool:
		if rv.Bool() {
			return []byte{byte(TagTrue)}, nil
		}
		return []byte{byte(TagFalse)}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append([]byte{byte(TagInt)}, EncodeInt64(rv.Int())...), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return append([]byte{byte(TagInt)}, EncodeInt(new(big.Int).SetUint64(rv.Uint()))...), nil
	case reflect.Float32, reflect.Float64:
		return encodeFloatBytes(rv.Float()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return append([]byte{byte(TagBytes)}, rv.Bytes()...), nil
		}
		return s.encodeOrdered(TagList, rv)
	case reflect.Array:
		return s.encodeOrdered(TagTuple, rv)
	case reflect.Map:
		return s.encodeDict(rv)
	case reflect.Func:
		return s.encodeGlobalFunc(rv)
	case reflect.Ptr, reflect.Struct:
		return s.encodeViaRegistry(v, rv)
	}

	return nil, newTypeError(rv.Type().String())
}

func encodeFloatBytes(f float64) []byte {
	out := make([]byte, 9)
	out[0] = byte(TagFloat)
	binary.LittleEndian.PutUint64(out[1:], math.Float64bits(f))
	return out
}

func (s *serializer) encodeOrdered(tag Tag, rv reflect.Value) ([]byte, error) {
	out := []byte{byte(tag)}
	n := rv.Len()
	for i := 0; i < n; i++ {
		chunk, err := s.encodeChunk(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// encodeUnordered encodes an unordered collection's members as chunks and
// sorts the resulting chunk bytes lexicographically before concatenating
// them, so the wire form is independent of Go's randomized map iteration
// order.
func (s *serializer) encodeUnordered(tag Tag, items []any) ([]byte, error) {
	chunks := make([][]byte, 0, len(items))
	for _, it := range items {
		c, err := s.encodeChunk(it)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	sort.Slice(chunks, func(i, j int) bool { return bytes.Compare(chunks[i], chunks[j]) < 0 })

	out := []byte{byte(tag)}
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}

// encodeDict encodes each key/value pair as a single concatenated chunk
// (key chunk followed by value chunk), then sorts those combined chunks
// lexicographically, for the same canonicalization reason as
// encodeUnordered.
func (s *serializer) encodeDict(rv reflect.Value) ([]byte, error) {
	keys := rv.MapKeys()
	chunks := make([][]byte, 0, len(keys))
	for _, k := range keys {
		kc, err := s.encodeChunk(k.Interface())
		if err != nil {
			return nil, err
		}
		vc, err := s.encodeChunk(rv.MapIndex(k).Interface())
		if err != nil {
			return nil, err
		}
		combined := make([]byte, 0, len(kc)+len(vc))
		combined = append(combined, kc...)
		combined = append(combined, vc...)
		chunks = append(chunks, combined)
	}
	sort.Slice(chunks, func(i, j int) bool { return bytes.Compare(chunks[i], chunks[j]) < 0 })

	out := []byte{byte(TagDict)}
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}

func (s *serializer) encodeGlobalType(t reflect.Type) ([]byte, error) {
	name, ok := typeGlobalName(t)
	if !ok {
		return nil, newTypeError(t.String())
	}
	module, qual, ok := splitGlobalName(name)
	if !ok {
		return nil, newTypeError(t.String())
	}
	return append([]byte{byte(TagGlobal)}, []byte(module+":"+qual)...), nil
}

func (s *serializer) encodeGlobalFunc(rv reflect.Value) ([]byte, error) {
	name, ok := funcGlobalName(rv)
	if !ok {
		return nil, newTypeError(rv.Type().String())
	}
	module, qual, ok := splitGlobalName(name)
	if !ok {
		return nil, newTypeError(rv.Type().String())
	}
	return append([]byte{byte(TagGlobal)}, []byte(module+":"+qual)...), nil
}

// encodeReduceResult renders a ReduceResult as either a bare GLOBAL
// chunk (Global set) or a REDUCE chunk built from Constructor, Args, and
// optional State, each encoded recursively like any other value.
func (s *serializer) encodeReduceResult(rr ReduceResult) ([]byte, error) {
	if rr.Global != "" {
		return append([]byte{byte(TagGlobal)}, []byte(rr.Global)...), nil
	}

	out := []byte{byte(TagReduce)}

	ctorChunk, err := s.encodeChunk(rr.Constructor)
	if err != nil {
		return nil, err
	}
	out = append(out, ctorChunk...)

	argsChunk, err := s.encodeChunk(Tuple(rr.Args))
	if err != nil {
		return nil, err
	}
	out = append(out, argsChunk...)

	if rr.State != nil {
		stateChunk, err := s.encodeChunk(rr.State)
		if err != nil {
			return nil, err
		}
		out = append(out, stateChunk...)
	}

	return out, nil
}

// encodeViaRegistry is reached for struct and pointer-to-struct values
// with no Reducible override: first an explicitly registered Reducer,
// then a registered Codec, then the default struct reducer (registered
// via RegisterStruct, or built lazily by reflecting over the type). A pointer whose element isn't a struct, or any other
// unhandled kind, fails with ErrType.
func (s *serializer) encodeViaRegistry(v any, rv reflect.Value) ([]byte, error) {
	t := rv.Type()

	if fn, ok := s.registry.reducerFor(t); ok {
		rr, err := fn(v)
		if err != nil {
			return nil, err
		}
		return s.encodeReduceResult(rr)
	}

	if entry, ok := s.registry.codecFor(t); ok {
		raw, err := entry.codec.Marshal(v)
		if err != nil {
			return nil, err
		}
		return s.encodeReduceResult(ReduceResult{
			Constructor: GlobalRef(entry.globalName),
			Args:        []any{raw},
		})
	}

	structType := t
	if t.Kind() == reflect.Ptr {
		structType = t.Elem()
	}
	if structType.Kind() == reflect.Struct {
		fn, err := s.registry.ensureStructReducer(structType)
		if err == nil {
			rr, rerr := fn(v)
			if rerr != nil {
				return nil, rerr
			}
			return s.encodeReduceResult(rr)
		}
	}

	return nil, newTypeError(t.String())
}
