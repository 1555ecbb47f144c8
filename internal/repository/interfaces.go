package repository

import (
	"context"

	"floral_essence/internal/domain/models"
)

// DocumentStore is a durable Persistence Store driver (json file or postgres).
type DocumentStore interface {
	Load(ctx context.Context) (models.Document, error)
	Save(ctx context.Context, doc models.Document, expected *int64) (int64, error)
	HealthCheck(ctx context.Context) error
}

// DocumentCache holds the last read document between writes.
type DocumentCache interface {
	Get(ctx context.Context) (models.Document, bool, error)
	Set(ctx context.Context, doc models.Document) error
	Invalidate(ctx context.Context) error
}
