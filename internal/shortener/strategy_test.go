package shortener_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cactripplanner/shortlinks/internal/shortener"
	"github.com/cactripplanner/shortlinks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerator(t *testing.T) *shortener.Generator {
	t.Helper()

	gen, err := shortener.NewGenerator(shortener.DefaultKeyConfig())
	require.NoError(t, err)

	return gen
}

// racingRepo simulates losing an insert race on the URL hash: the first
// GetByHash misses, Save reports the hash as taken, later lookups find winner.
type racingRepo struct {
	winner  *shortener.ShortLink
	lookups int
}

func (r *racingRepo) Save(_ context.Context, _ *shortener.ShortLink) error {
	return shortener.ErrHashExists
}

func (r *racingRepo) GetByKey(_ context.Context, _ shortener.Key) (*shortener.ShortLink, error) {
	return nil, shortener.ErrNotFound
}

func (r *racingRepo) GetByHash(_ context.Context, _ shortener.URLHash) (*shortener.ShortLink, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, shortener.ErrNotFound
	}

	return r.winner, nil
}

func TestTokenStrategy_Shorten(t *testing.T) {
	t.Run("creates a new link for every call", func(t *testing.T) {
		s := store.NewMemoryStore()
		strategy := shortener.NewTokenStrategy(s, newGenerator(t))

		first, created1, err1 := strategy.Shorten(context.Background(), "http://example.com/page")
		second, created2, err2 := strategy.Shorten(context.Background(), "http://example.com/page")

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.True(t, created1)
		assert.True(t, created2)
		assert.NotEqual(t, first.Key, second.Key)
		assert.Empty(t, first.URLHash)
		assert.False(t, first.CreatedAt.IsZero())
	})

	t.Run("rejects invalid urls without writing", func(t *testing.T) {
		repo := &failingRepo{}
		strategy := shortener.NewTokenStrategy(repo, newGenerator(t))

		link, _, err := strategy.Shorten(context.Background(), "not-a-url")

		assert.Nil(t, link)
		require.ErrorIs(t, err, shortener.ErrInvalidURL)
		assert.Zero(t, repo.saves)
	})

	t.Run("returns store errors", func(t *testing.T) {
		repo := &failingRepo{err: errors.New("disk full")}
		strategy := shortener.NewTokenStrategy(repo, newGenerator(t))

		link, created, err := strategy.Shorten(context.Background(), "https://example.com")

		assert.Nil(t, link)
		assert.False(t, created)
		assert.Error(t, err)
	})

	t.Run("keys stay unique under concurrent submission", func(t *testing.T) {
		s := store.NewMemoryStore()
		strategy := shortener.NewTokenStrategy(s, newGenerator(t))

		const n = 200

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			keys = make(map[shortener.Key]string, n)
		)

		for i := range n {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				target := "https://example.com/page/" + string(rune('a'+i%26))

				link, _, err := strategy.Shorten(context.Background(), target)
				if !assert.NoError(t, err) {
					return
				}

				mu.Lock()
				defer mu.Unlock()

				_, dup := keys[link.Key]
				assert.False(t, dup, "duplicate key %s", link.Key)
				keys[link.Key] = target
			}(i)
		}

		wg.Wait()

		assert.Len(t, keys, n)

		for key, target := range keys {
			got, err := s.GetByKey(context.Background(), key)
			require.NoError(t, err)
			assert.Equal(t, target, got.TargetURL)
		}
	})
}

func TestHashStrategy_Shorten(t *testing.T) {
	t.Run("returns the same link for equivalent urls", func(t *testing.T) {
		s := store.NewMemoryStore()
		strategy := shortener.NewHashStrategy(s, newGenerator(t))

		first, created1, err1 := strategy.Shorten(context.Background(), "https://example.com/path")
		second, created2, err2 := strategy.Shorten(context.Background(), "HTTPS://EXAMPLE.COM:443/path/")

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.True(t, created1)
		assert.False(t, created2)
		assert.Equal(t, first.Key, second.Key)
		assert.Equal(t, "https://example.com/path", second.TargetURL)
	})

	t.Run("returns different links for different urls", func(t *testing.T) {
		s := store.NewMemoryStore()
		strategy := shortener.NewHashStrategy(s, newGenerator(t))

		first, _, err1 := strategy.Shorten(context.Background(), "https://example.com/path1")
		second, _, err2 := strategy.Shorten(context.Background(), "https://example.com/path2")

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, first.Key, second.Key)
	})

	t.Run("rejects invalid urls", func(t *testing.T) {
		strategy := shortener.NewHashStrategy(store.NewMemoryStore(), newGenerator(t))

		_, _, err := strategy.Shorten(context.Background(), "ftp://example.com/file")

		require.ErrorIs(t, err, shortener.ErrInvalidURL)
	})

	t.Run("resolves a lost insert race to the winner", func(t *testing.T) {
		winner := &shortener.ShortLink{Key: "winnerkey", TargetURL: "https://example.com"}
		repo := &racingRepo{winner: winner}
		strategy := shortener.NewHashStrategy(repo, newGenerator(t))

		link, created, err := strategy.Shorten(context.Background(), "https://example.com")

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, winner, link)
		assert.Equal(t, 2, repo.lookups)
	})
}
