package store

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/cactripplanner/shortlinks/internal/content"
)

// ContentMemoryStore is an in-memory content repository used with
// --storage=memory and in tests.
type ContentMemoryStore struct {
	mu           sync.RWMutex
	articles     []content.Article
	faqs         map[string]content.AboutFaq
	destinations []content.Destination
	now          func() time.Time
}

func NewContentMemoryStore() *ContentMemoryStore {
	return &ContentMemoryStore{
		faqs: make(map[string]content.AboutFaq),
		now:  time.Now,
	}
}

func (s *ContentMemoryStore) AddArticle(a content.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.articles = append(s.articles, a)
}

func (s *ContentMemoryStore) AddFaq(page content.AboutFaq) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faqs[page.Slug] = page
}

func (s *ContentMemoryStore) AddDestination(d content.Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destinations = append(s.destinations, d)
}

func (s *ContentMemoryStore) FindRandomPublished(
	_ context.Context,
	contentType content.ContentType,
) (*content.Article, error) {
	matches := s.published(func(a content.Article) bool { return a.ContentType == contentType })
	if len(matches) == 0 {
		return nil, content.ErrNotFound
	}

	a := matches[rand.IntN(len(matches))]

	return &a, nil
}

func (s *ContentMemoryStore) FindPublishedBySlug(
	_ context.Context,
	contentType content.ContentType,
	slug string,
) (*content.Article, error) {
	matches := s.published(func(a content.Article) bool {
		return a.ContentType == contentType && a.Slug == slug
	})
	if len(matches) == 0 {
		return nil, content.ErrNotFound
	}

	return &matches[0], nil
}

func (s *ContentMemoryStore) FindRecentPublished(_ context.Context, limit int) ([]content.Article, error) {
	matches := s.published(func(content.Article) bool { return true })

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].PublishDate.After(*matches[j].PublishDate)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

func (s *ContentMemoryStore) FindFaqBySlug(_ context.Context, slug string) (*content.AboutFaq, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.faqs[slug]
	if !ok {
		return nil, content.ErrNotFound
	}

	return &page, nil
}

func (s *ContentMemoryStore) SampleDestinations(_ context.Context, n int) ([]content.Destination, error) {
	s.mu.RLock()

	published := make([]content.Destination, 0, len(s.destinations))

	for _, d := range s.destinations {
		if d.Published {
			published = append(published, d)
		}
	}

	s.mu.RUnlock()

	rand.Shuffle(len(published), func(i, j int) {
		published[i], published[j] = published[j], published[i]
	})

	if len(published) > n {
		published = published[:n]
	}

	return published, nil
}

func (s *ContentMemoryStore) published(match func(content.Article) bool) []content.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()

	var out []content.Article

	for _, a := range s.articles {
		if a.Published(now) && match(a) {
			out = append(out, a)
		}
	}

	return out
}

var _ content.Repository = (*ContentMemoryStore)(nil)
