package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"floral_essence/internal/domain/models"
	redisapp "floral_essence/internal/storage/redis"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const documentKey = "floral:document"

// MemoryCache keeps a deep copy of the document in process.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(ctx context.Context) (models.Document, bool, error) {
	v, ok := m.c.Get(documentKey)
	if !ok {
		return models.Document{}, false, nil
	}

	return v.(models.Document).Clone(), true, nil
}

func (m *MemoryCache) Set(ctx context.Context, doc models.Document) error {
	m.c.SetDefault(documentKey, doc.Clone())
	return nil
}

func (m *MemoryCache) Invalidate(ctx context.Context) error {
	m.c.Delete(documentKey)
	return nil
}

// RedisCache shares the document between server replicas.
type RedisCache struct {
	Client *redisapp.Client
	ttl    time.Duration
}

func NewRedisCache(client *redisapp.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context) (models.Document, bool, error) {
	val, err := r.Client.Get(ctx, documentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Document{}, false, nil
	}
	if err != nil {
		return models.Document{}, false, err
	}

	var doc models.Document
	if err := json.Unmarshal(val, &doc); err != nil {
		return models.Document{}, false, err
	}

	return doc, true, nil
}

func (r *RedisCache) Set(ctx context.Context, doc models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return r.Client.Set(ctx, documentKey, data, r.ttl).Err()
}

func (r *RedisCache) Invalidate(ctx context.Context) error {
	return r.Client.Del(ctx, documentKey).Err()
}

// NopCache disables caching.
type NopCache struct{}

func (NopCache) Get(context.Context) (models.Document, bool, error) {
	return models.Document{}, false, nil
}

func (NopCache) Set(context.Context, models.Document) error { return nil }

func (NopCache) Invalidate(context.Context) error { return nil }
