package store

import (
	"context"
	"sync"

	"github.com/cactripplanner/shortlinks/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[shortener.Key]shortener.ShortLink
	hashes map[shortener.URLHash]shortener.Key
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:  make(map[shortener.Key]shortener.ShortLink),
		hashes: make(map[shortener.URLHash]shortener.Key),
	}
}

func (m *MemoryStore) Save(_ context.Context, link *shortener.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Key]; ok {
		return shortener.ErrKeyExists
	}

	if link.URLHash != "" {
		if _, ok := m.hashes[link.URLHash]; ok {
			return shortener.ErrHashExists
		}

		m.hashes[link.URLHash] = link.Key
	}

	m.links[link.Key] = *link

	return nil
}

func (m *MemoryStore) GetByKey(_ context.Context, key shortener.Key) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[key]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) GetByHash(_ context.Context, hash shortener.URLHash) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, ok := m.hashes[hash]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	link := m.links[key]

	return &link, nil
}

// Len returns the number of stored links.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.links)
}

var _ shortener.Repository = (*MemoryStore)(nil)
