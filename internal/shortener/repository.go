package shortener

import "context"

// Repository persists short links. Implementations must enforce uniqueness of
// Key and of a non-empty URLHash and report violations as ErrKeyExists and
// ErrHashExists respectively.
type Repository interface {
	Save(ctx context.Context, link *ShortLink) error
	GetByKey(ctx context.Context, key Key) (*ShortLink, error)
	// GetByHash returns the link created for a normalized URL hash.
	// Returns ErrNotFound if no mapping exists.
	GetByHash(ctx context.Context, hash URLHash) (*ShortLink, error)
}
