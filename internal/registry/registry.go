// Package registry keeps compiled schemas so that a schema sent once can be
// used for many validations.
package registry

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
)

// Key identifies a compiled schema. It is the SHA-256 digest of the schema's
// canonical JSON encoding, so equal schemas share one Key.
type Key string

// KeyOf returns the Key for schema.
func KeyOf(schema any) (Key, error) {
	// map keys are encoded in sorted order, which makes the encoding canonical
	data, err := json.MarshalNoEscape(schema)
	if err != nil {
		return "", &UnencodableSchemaError{Wrapped: err}
	}
	sum := sha256.Sum256(data)
	return Key(hex.EncodeToString(sum[:])), nil
}

// Registry is a bounded, least recently used set of compiled schemas. It is
// safe for concurrent use. Concurrent requests to compile the same schema
// compile it once.
type Registry struct {
	opts  []diagnostics.Option
	cache *lru.Cache[Key, *diagnostics.Validator]
	group singleflight.Group  // Prevents duplicate compilations
	stats func(compiled bool) // Optional compile observer
}

// New returns a Registry holding at most size schemas, compiled with opts.
// A size below one is treated as one.
func New(size int, opts ...diagnostics.Option) *Registry {
	// lru.New only fails for sizes below one
	cache, _ := lru.New[Key, *diagnostics.Validator](max(size, 1))
	return &Registry{
		opts:  opts,
		cache: cache,
	}
}

// OnCompile registers fn to be called after each compilation, with whether
// it succeeded. It must be called before the Registry is shared.
func (r *Registry) OnCompile(fn func(compiled bool)) {
	r.stats = fn
}

// Add compiles schema, unless an equal schema is already held, and returns
// its Key. When the schema cannot be compiled the error is
// diagnostics.Issues and nothing is stored.
func (r *Registry) Add(schema any) (Key, *diagnostics.Validator, error) {
	k, err := KeyOf(schema)
	if err != nil {
		return "", nil, err
	}
	if v, ok := r.Get(k); ok {
		return k, v, nil
	}

	res, err, _ := r.group.Do(string(k), func() (interface{}, error) {
		// Double-check after acquiring singleflight
		if v, ok := r.Get(k); ok {
			return v, nil
		}
		v, cErr := diagnostics.Compile(schema, r.opts...)
		if r.stats != nil {
			r.stats(cErr == nil)
		}
		if cErr != nil {
			return nil, cErr
		}
		r.cache.Add(k, v)
		return v, nil
	})
	if err != nil {
		return "", nil, err
	}

	v, _ := res.(*diagnostics.Validator)
	return k, v, nil
}

// Get returns the compiled schema for k.
func (r *Registry) Get(k Key) (*diagnostics.Validator, bool) {
	return r.cache.Get(k)
}

// MustGet is Get returning a *NotFoundError for unknown keys.
func (r *Registry) MustGet(k Key) (*diagnostics.Validator, error) {
	v, ok := r.Get(k)
	if !ok {
		return nil, &NotFoundError{Key: k}
	}
	return v, nil
}

// Len returns the number of schemas held.
func (r *Registry) Len() int {
	return r.cache.Len()
}
