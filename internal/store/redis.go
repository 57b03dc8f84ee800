package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cactripplanner/shortlinks/internal/shortener"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of shortener.Repository. Keys are
// claimed with SETNX and URL hashes with HSETNX, so uniqueness holds across
// concurrent writers.
type RedisStore struct {
	client  *redis.Client
	prefix  string // "shortlink:" for key->record (string keys)
	hashKey string // "shortlink_hashes" for urlHash->key (hash map)
}

type redisRecord struct {
	TargetURL string    `json:"targetUrl"`
	URLHash   string    `json:"urlHash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  "shortlink:",
		hashKey: "shortlink_hashes",
	}
}

func (r *RedisStore) Save(ctx context.Context, link *shortener.ShortLink) error {
	payload, err := json.Marshal(redisRecord{
		TargetURL: link.TargetURL,
		URLHash:   string(link.URLHash),
		CreatedAt: link.CreatedAt,
	})
	if err != nil {
		return err
	}

	key := r.prefix + string(link.Key)

	ok, err := r.client.SetNX(ctx, key, payload, 0).Result()
	if err != nil {
		return err
	}

	if !ok {
		return shortener.ErrKeyExists
	}

	if link.URLHash == "" {
		return nil
	}

	ok, err = r.client.HSetNX(ctx, r.hashKey, string(link.URLHash), string(link.Key)).Result()
	if err == nil && ok {
		return nil
	}

	// Release the key so the link is not half written.
	if delErr := r.client.Del(ctx, key).Err(); delErr != nil && err == nil {
		err = delErr
	}

	if err != nil {
		return err
	}

	return shortener.ErrHashExists
}

func (r *RedisStore) GetByKey(ctx context.Context, key shortener.Key) (*shortener.ShortLink, error) {
	payload, err := r.client.Get(ctx, r.prefix+string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	var rec redisRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}

	return &shortener.ShortLink{
		Key:       key,
		TargetURL: rec.TargetURL,
		URLHash:   shortener.URLHash(rec.URLHash),
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (r *RedisStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortLink, error) {
	key, err := r.client.HGet(ctx, r.hashKey, string(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return r.GetByKey(ctx, shortener.Key(key))
}

var _ shortener.Repository = (*RedisStore)(nil)
