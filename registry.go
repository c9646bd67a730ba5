package stash

import (
	"fmt"
	"math/big"
	"reflect"
	"sync"

	"github.com/zoobzio/sentinel"
)

type codecEntry struct {
	codec      Codec
	globalName string
}

// Registry is the collaborator that resolves custom types to Reducers,
// resolves GLOBAL names to their bound values, and resolves opaque types
// to Codec-based fallback encoding. It is safe for concurrent use: reads
// happen on every Dump/Load, while Register* calls take a write lock and
// may happen at any time, mirroring the teacher's SetEncryptor/SetHasher
// pattern on Processor.
type Registry struct {
	mu sync.RWMutex

	reducers     map[reflect.Type]Reducer
	globals      map[string]any
	codecsByType map[reflect.Type]codecEntry

	reducerCacheMu sync.RWMutex
	reducerCache   map[reflect.Type]Reducer
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		reducers:     make(map[reflect.Type]Reducer),
		globals:      make(map[string]any),
		codecsByType: make(map[reflect.Type]codecEntry),
		reducerCache: make(map[reflect.Type]Reducer),
	}
}

// RegisterReducer binds t to fn. Encountering a struct or pointer value
// of exactly this type during encoding invokes fn instead of the default
// struct reducer. Values of other kinds (slices, maps, strings, numbers)
// are encoded by kind and never consult fn.
func (r *Registry) RegisterReducer(t reflect.Type, fn Reducer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reducers[t] = fn
}

// RegisterGlobal binds name to v for GLOBAL resolution during Load. name
// must be in "module:qualname" form and must match what the encoding
// side derives or was given via GlobalRef — Go has no runtime module
// registry to search, unlike the dynamic host language this format
// originates from, so decode-side binding is always explicit.
func (r *Registry) RegisterGlobal(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals[name] = v
}

// RegisterConstructor is RegisterGlobal specialized for Constructor
// values, the common case of binding a REDUCE constructor name.
func (r *Registry) RegisterConstructor(name string, ctor Constructor) {
	r.RegisterGlobal(name, ctor)
}

// RegisterCodec binds t to c: values of type t encode via c.Marshal into
// a REDUCE chunk whose constructor is a GLOBAL reference synthesized from
// c's content type, and decode by calling c.Unmarshal into a new t.
func (r *Registry) RegisterCodec(t reflect.Type, c Codec) {
	name := "codec:" + c.ContentType() + ":" + t.String()
	ctor := Constructor(func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("stash: codec constructor for %s expects 1 arg, got %d", t, len(args))
		}
		raw, ok := args[0].([]byte)
		if !ok {
			return nil, fmt.Errorf("stash: codec constructor for %s expects a []byte arg", t)
		}
		ptr := reflect.New(t)
		if err := c.Unmarshal(raw, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("stash: codec unmarshal for %s: %w", t, err)
		}
		return ptr.Elem().Interface(), nil
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecsByType[t] = codecEntry{codec: c, globalName: name}
	r.globals[name] = ctor
}

func (r *Registry) reducerFor(t reflect.Type) (Reducer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.reducers[t]
	return fn, ok
}

func (r *Registry) codecFor(t reflect.Type) (codecEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.codecsByType[t]
	return e, ok
}

func (r *Registry) resolveGlobal(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.globals[name]
	return v, ok
}

// ensureStructReducer lazily builds and caches a default reducer for a
// struct type discovered at encode time with no prior registration. It
// is the encode-side convenience counterpart to the decode-side
// necessity RegisterStruct addresses explicitly.
func (r *Registry) ensureStructReducer(t reflect.Type) (Reducer, error) {
	r.reducerCacheMu.RLock()
	fn, ok := r.reducerCache[t]
	r.reducerCacheMu.RUnlock()
	if ok {
		return fn, nil
	}

	fields, err := scanStructFields(t)
	if err != nil {
		return nil, err
	}
	if err := r.registerStructFields(t, fields); err != nil {
		return nil, err
	}

	r.reducerCacheMu.RLock()
	defer r.reducerCacheMu.RUnlock()
	return r.reducerCache[t], nil
}

func (r *Registry) registerStructFields(t reflect.Type, fields []fieldMeta) error {
	full, ok := typeGlobalName(t)
	if !ok {
		return fmt.Errorf("stash: type %s has no package-qualified name (unnamed type); register a Reducer explicitly", t)
	}
	module, qual, ok := splitGlobalName(full)
	if !ok {
		return fmt.Errorf("stash: type %s has no module:qualname form; register a Reducer explicitly", t)
	}
	name := module + ":" + qual

	ctor := Constructor(func(args []any) (any, error) {
		if len(args) != len(fields) {
			return nil, fmt.Errorf("stash: constructor for %s expects %d args, got %d", t, len(fields), len(args))
		}
		ptr := reflect.New(t)
		rv := ptr.Elem()
		for i, f := range fields {
			if args[i] == nil {
				continue
			}
			fv := rv.FieldByIndex(f.Index)
			if !fv.CanSet() {
				continue
			}
			if bi, ok := args[i].(*big.Int); ok && (fv.CanInt() || fv.CanUint()) {
				// INT decodes as *big.Int; narrow it into the field's integer kind.
				if fv.CanInt() && bi.IsInt64() && !fv.OverflowInt(bi.Int64()) {
					fv.SetInt(bi.Int64())
					continue
				}
				if fv.CanUint() && bi.IsUint64() && !fv.OverflowUint(bi.Uint64()) {
					fv.SetUint(bi.Uint64())
					continue
				}
				return nil, fmt.Errorf("stash: constructor for %s: field %s cannot hold %s", t, f.Name, bi)
			}
			av := reflect.ValueOf(args[i])
			if !av.Type().ConvertibleTo(fv.Type()) {
				return nil, fmt.Errorf("stash: constructor for %s: field %s cannot accept %s", t, f.Name, av.Type())
			}
			fv.Set(av.Convert(fv.Type()))
		}
		// Returned as a pointer (rather than rv.Interface()) so REDUCE
		// state, applied after construction, can still mutate the same
		// struct: a plain Go struct value returned as any has no
		// addressable identity to set fields on afterward.
		return ptr.Interface(), nil
	})

	reducer := Reducer(func(v any) (ReduceResult, error) {
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		args := make([]any, len(fields))
		for i, f := range fields {
			args[i] = rv.FieldByIndex(f.Index).Interface()
		}
		return ReduceResult{Constructor: GlobalRef(name), Args: args}, nil
	})

	r.reducerCacheMu.Lock()
	r.reducerCache[t] = reducer
	r.reducerCacheMu.Unlock()

	r.mu.Lock()
	r.globals[name] = ctor
	r.reducers[t] = reducer
	r.mu.Unlock()

	return nil
}

// RegisterStruct explicitly registers T's default (sentinel-scanned)
// struct reducer and its matching GLOBAL constructor under r. Call this
// on any Registry that will decode values of T — GLOBAL resolution
// requires an explicit binding, so a Registry built in a different
// process than the one that encoded T needs this call before Load can
// reconstruct it, even though encoding never required it.
func RegisterStruct[T any](r *Registry) error {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("stash: RegisterStruct: %T is not a struct", zero)
	}
	spec := sentinel.Scan[T]()
	return r.registerStructFields(t, fieldsFromSentinel(spec))
}
