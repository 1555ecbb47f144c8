package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/logger/sl"
	"floral_essence/internal/metrics"
)

// Repository reads the document through the cache and writes through the
// store. A cache failure never fails a request.
type Repository struct {
	// mu orders cache fills after store writes within this process
	mu    sync.RWMutex
	log   *slog.Logger
	store DocumentStore
	cache DocumentCache
}

func NewRepository(log *slog.Logger, store DocumentStore, cache DocumentCache) *Repository {
	if cache == nil {
		cache = NopCache{}
	}

	return &Repository{
		log:   log,
		store: store,
		cache: cache,
	}
}

func (r *Repository) Load(ctx context.Context) (models.Document, error) {
	const op = "repository.Load"

	log := r.log.With(slog.String("op", op))

	doc, ok, err := r.cache.Get(ctx)
	if err != nil {
		log.Warn("document cache read failed", sl.Err(err))
	}
	if ok {
		metrics.DocumentCacheHits.WithLabelValues("hit").Inc()
		return doc, nil
	}
	metrics.DocumentCacheHits.WithLabelValues("miss").Inc()

	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err = r.store.Load(ctx)
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.cache.Set(ctx, doc); err != nil {
		log.Warn("document cache write failed", sl.Err(err))
	}

	return doc, nil
}

func (r *Repository) Save(ctx context.Context, doc models.Document, expected *int64) (int64, error) {
	const op = "repository.Save"

	log := r.log.With(slog.String("op", op))

	r.mu.Lock()
	defer r.mu.Unlock()

	rev, err := r.store.Save(ctx, doc, expected)
	if err != nil {
		return rev, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.cache.Invalidate(ctx); err != nil {
		log.Warn("document cache invalidate failed", sl.Err(err))
	}

	return rev, nil
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.store.HealthCheck(ctx)
}
