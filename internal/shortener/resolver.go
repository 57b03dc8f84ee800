package shortener

import "context"

// Resolver looks up the target of a key.
type Resolver struct {
	store Repository
	keys  KeyConfig
}

// NewResolver creates a resolver that only queries keys shaped like keys.
func NewResolver(store Repository, keys KeyConfig) *Resolver {
	return &Resolver{
		store: store,
		keys:  keys.WithDefaults(),
	}
}

// Resolve returns the link stored for raw. Malformed keys are reported as
// ErrNotFound without touching the store.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*ShortLink, error) {
	if !r.keys.Valid(raw) {
		return nil, ErrNotFound
	}

	return r.store.GetByKey(ctx, Key(raw))
}
