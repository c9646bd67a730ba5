package stash

import (
	"context"
	"reflect"
	"time"
)

// config holds the resolved KeyGen/Registry for a single Dump/Load/Hash
// call.
type config struct {
	keygen   KeyGen
	registry *Registry
}

// Option configures a Dump, Load, or Hash call.
type Option func(*config)

// WithKeyGen overrides the default Blake3KeyGen.
func WithKeyGen(kg KeyGen) Option {
	return func(c *config) { c.keygen = kg }
}

// WithRegistry overrides the process-wide default Registry.
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}

var defaultRegistry = NewRegistry()

func resolveOptions(opts []Option) config {
	cfg := config{keygen: Blake3KeyGen{}, registry: defaultRegistry}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// DefaultRegistry returns the package-wide Registry used when no
// WithRegistry option is given. Registering against it affects every
// caller in the process that doesn't supply its own Registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// nilMapping computes keys without persisting anything, backing Hash.
type nilMapping struct{ keygen KeyGen }

func (n nilMapping) PutBlob(b []byte) (Key, error) { return n.keygen.Digest(b), nil }
func (n nilMapping) GetBlob(k Key) ([]byte, error)  { return nil, newNotFound(k) }

// Dump serializes v against m, storing any subvalue whose encoded form
// exceeds 255 bytes as its own blob, and returns the Key of the root
// blob (which is always stored, regardless of size).
func Dump(ctx context.Context, v any, m Mapping, opts ...Option) (Key, error) {
	cfg := resolveOptions(opts)
	start := time.Now()
	emitDumpStart(ctx)

	s := newSerializer(ctx, m, cfg.keygen, cfg.registry)

	rv := reflect.ValueOf(v)
	id, hasID := identity(rv)
	if hasID {
		s.onStack[id] = true
	}
	blob, err := s.encode(v)
	if hasID {
		delete(s.onStack, id)
	}
	if err != nil {
		emitDumpComplete(ctx, Key{}, 0, s.promoted, s.shared, time.Since(start), err)
		return Key{}, err
	}

	key, err := m.PutBlob(blob)
	if err != nil {
		werr := wrapMappingErr(err)
		emitDumpComplete(ctx, Key{}, len(blob), s.promoted, s.shared, time.Since(start), werr)
		return Key{}, werr
	}

	if f, ok := m.(Flusher); ok {
		if ferr := f.Flush(); ferr != nil {
			werr := wrapMappingErr(ferr)
			emitDumpComplete(ctx, key, len(blob), s.promoted, s.shared, time.Since(start), werr)
			return Key{}, werr
		}
	}

	emitDumpComplete(ctx, key, len(blob), s.promoted, s.shared, time.Since(start), nil)
	return key, nil
}

// Load retrieves the blob stored at k from m and reconstructs its value
// graph.
func Load(ctx context.Context, k Key, m Mapping, opts ...Option) (any, error) {
	cfg := resolveOptions(opts)
	start := time.Now()
	emitLoadStart(ctx, k)

	blob, err := m.GetBlob(k)
	if err != nil {
		werr := wrapMappingErr(err)
		emitLoadComplete(ctx, k, time.Since(start), werr)
		return nil, werr
	}

	d := &deserializer{
		ctx:      ctx,
		mapping:  m,
		keygen:   cfg.keygen,
		registry: cfg.registry,
		cache:    make(map[Key]*node),
	}
	n, err := d.decode(blob)
	if err != nil {
		emitLoadComplete(ctx, k, time.Since(start), err)
		return nil, err
	}

	v, err := d.materialize(n)
	emitLoadComplete(ctx, k, time.Since(start), err)
	return v, err
}

// Hash computes the Key that Dump would assign to v without storing
// anything — it serializes against a no-op Mapping (see nildb for a
// standalone, importable equivalent).
func Hash(ctx context.Context, v any, opts ...Option) (Key, error) {
	cfg := resolveOptions(opts)
	return Dump(ctx, v, nilMapping{keygen: cfg.keygen}, opts...)
}

// Stash bundles a KeyGen and Registry so repeated Dump/Load/Hash calls
// against the same configuration don't need to repeat Options.
type Stash struct {
	keygen   KeyGen
	registry *Registry
}

// New returns a Stash using kg and reg, defaulting to Blake3KeyGen and a
// fresh Registry when either is nil.
func New(kg KeyGen, reg *Registry) *Stash {
	if kg == nil {
		kg = Blake3KeyGen{}
	}
	if reg == nil {
		reg = NewRegistry()
	}
	return &Stash{keygen: kg, registry: reg}
}

// Registry returns the Stash's Registry, for registering reducers,
// globals, or codecs against it.
func (s *Stash) Registry() *Registry { return s.registry }

// Dump serializes v against m using s's KeyGen and Registry.
func (s *Stash) Dump(ctx context.Context, v any, m Mapping) (Key, error) {
	return Dump(ctx, v, m, WithKeyGen(s.keygen), WithRegistry(s.registry))
}

// Load reconstructs the value stored at k in m using s's KeyGen and
// Registry.
func (s *Stash) Load(ctx context.Context, k Key, m Mapping) (any, error) {
	return Load(ctx, k, m, WithKeyGen(s.keygen), WithRegistry(s.registry))
}

// Hash computes v's content Key using s's KeyGen without storing
// anything.
func (s *Stash) Hash(ctx context.Context, v any) (Key, error) {
	return Hash(ctx, v, WithKeyGen(s.keygen), WithRegistry(s.registry))
}
