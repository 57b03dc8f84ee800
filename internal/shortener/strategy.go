package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Strategy creates short links. created is false when an existing link was
// returned instead of a new one.
type Strategy interface {
	Shorten(ctx context.Context, targetURL string) (link *ShortLink, created bool, err error)
}

// TokenStrategy always generates a new key for each URL.
type TokenStrategy struct {
	store Repository
	keys  *Generator
}

// NewTokenStrategy creates a new token-based shortening strategy.
func NewTokenStrategy(store Repository, keys *Generator) *TokenStrategy {
	return &TokenStrategy{
		store: store,
		keys:  keys,
	}
}

func (s *TokenStrategy) Shorten(ctx context.Context, targetURL string) (*ShortLink, bool, error) {
	if err := ValidateTargetURL(targetURL); err != nil {
		return nil, false, err
	}

	link := &ShortLink{
		TargetURL: targetURL,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.keys.Insert(ctx, s.store, link); err != nil {
		return nil, false, err
	}

	return link, true, nil
}

// HashStrategy deduplicates URLs by returning the same key for equivalent URLs.
type HashStrategy struct {
	store Repository
	keys  *Generator
}

// NewHashStrategy creates a new hash-based shortening strategy.
func NewHashStrategy(store Repository, keys *Generator) *HashStrategy {
	return &HashStrategy{
		store: store,
		keys:  keys,
	}
}

func (s *HashStrategy) Shorten(ctx context.Context, targetURL string) (*ShortLink, bool, error) {
	if err := ValidateTargetURL(targetURL); err != nil {
		return nil, false, err
	}

	normalized, err := NormalizeURL(targetURL)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	hash := HashURL(normalized)

	existing, err := s.store.GetByHash(ctx, hash)
	if err == nil {
		return existing, false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	link := &ShortLink{
		TargetURL: targetURL,
		URLHash:   hash,
		CreatedAt: time.Now().UTC(),
	}

	err = s.keys.Insert(ctx, s.store, link)
	if errors.Is(err, ErrHashExists) {
		// A concurrent request stored the same URL first.
		existing, err = s.store.GetByHash(ctx, hash)
		if err != nil {
			return nil, false, err
		}

		return existing, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return link, true, nil
}
