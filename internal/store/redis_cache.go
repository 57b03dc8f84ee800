package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cactripplanner/shortlinks/internal/shortener"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// errCachedMiss marks a key recently confirmed absent in the backing store.
var errCachedMiss = errors.New("cached miss")

// RedisCacheRepository wraps a Repository with Redis caching for reads.
type RedisCacheRepository struct {
	store   shortener.Repository
	client  *redis.Client
	prefix  string
	hashKey string
	ttl     time.Duration
	missTTL time.Duration
	loads   singleflight.Group
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
// Lookups of unknown keys are cached for missTTL (zero disables it).
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl, missTTL time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:   store,
		client:  client,
		prefix:  "cache:shortlink:",
		hashKey: "cache:shortlink_hashes",
		ttl:     ttl,
		missTTL: missTTL,
	}
}

// Save stores a link in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, link *shortener.ShortLink) error {
	if err := r.store.Save(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

// GetByKey retrieves a link by its key, checking cache first.
func (r *RedisCacheRepository) GetByKey(ctx context.Context, key shortener.Key) (*shortener.ShortLink, error) {
	link, err := r.getFromCache(ctx, key)
	if err == nil {
		return link, nil
	}

	if errors.Is(err, errCachedMiss) {
		return nil, shortener.ErrNotFound
	}

	// concurrent misses for one key share a single backing lookup
	v, err, _ := r.loads.Do(string(key), func() (any, error) {
		link, err := r.store.GetByKey(ctx, key)
		if err != nil {
			if errors.Is(err, shortener.ErrNotFound) {
				r.cacheMiss(ctx, key)
			}

			return nil, err
		}

		r.cacheLink(ctx, link)

		return link, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*shortener.ShortLink), nil
}

// GetByHash retrieves a link by its URL hash, checking the hash index first.
func (r *RedisCacheRepository) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortLink, error) {
	key, err := r.client.HGet(ctx, r.hashKey, string(hash)).Result()
	if err == nil {
		if link, err := r.getFromCache(ctx, shortener.Key(key)); err == nil {
			return link, nil
		}
	}

	link, err := r.store.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, key shortener.Key) (*shortener.ShortLink, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(key)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	if result["missing"] == "1" {
		return nil, errCachedMiss
	}

	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	return &shortener.ShortLink{
		Key:       key,
		TargetURL: result["target_url"],
		URLHash:   shortener.URLHash(result["url_hash"]),
		CreatedAt: createdAt,
	}, nil
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *shortener.ShortLink) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(link.Key)

	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"target_url": link.TargetURL,
		"url_hash":   string(link.URLHash),
		"created_at": link.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if link.URLHash != "" {
		pipe.HSet(ctx, r.hashKey, string(link.URLHash), string(link.Key))
	}

	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) cacheMiss(ctx context.Context, key shortener.Key) {
	if r.missTTL <= 0 {
		return
	}

	pipe := r.client.Pipeline()
	k := r.prefix + string(key)

	pipe.HSet(ctx, k, "missing", "1")
	pipe.Expire(ctx, k, r.missTTL)

	_, _ = pipe.Exec(ctx)
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

var _ shortener.Repository = (*RedisCacheRepository)(nil)
