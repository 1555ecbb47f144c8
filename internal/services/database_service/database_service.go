package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/logger/sl"
	"floral_essence/internal/metrics"
	"floral_essence/internal/storage"
)

type DocumentRepository interface {
	Load(ctx context.Context) (models.Document, error)
	Save(ctx context.Context, doc models.Document, expected *int64) (int64, error)
	HealthCheck(ctx context.Context) error
}

type DatabaseService struct {
	log  *slog.Logger
	repo DocumentRepository
}

func NewDatabaseService(log *slog.Logger, repo DocumentRepository) *DatabaseService {
	return &DatabaseService{
		log:  log,
		repo: repo,
	}
}

// Get returns the stored document with products migrated to the normalized
// category form.
func (s *DatabaseService) Get(ctx context.Context) (models.Document, error) {
	const op = "database_service.Get"

	log := s.log.With(slog.String("op", op))

	doc, err := s.repo.Load(ctx)
	if err != nil {
		log.Error("failed to load document", sl.Err(err))

		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	doc.Normalize()

	return doc, nil
}

// Replace stores doc as the whole new document. When expected is set the
// write only succeeds if the stored revision still matches it.
func (s *DatabaseService) Replace(ctx context.Context, doc models.Document, expected *int64) (int64, error) {
	const op = "database_service.Replace"

	log := s.log.With(
		slog.String("op", op),
		slog.Int("products", len(doc.Products)),
		slog.Int("categories", len(doc.Categories)),
	)

	if expected != nil {
		log = log.With(slog.Int64("expected", *expected))
	}

	doc.Normalize()
	if err := doc.Validate(); err != nil {
		metrics.DocumentWrites.WithLabelValues("invalid").Inc()
		log.Warn("document rejected", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rev, err := s.repo.Save(ctx, doc, expected)
	if err != nil {
		if errors.Is(err, storage.ErrRevisionConflict) {
			metrics.DocumentWrites.WithLabelValues("conflict").Inc()
			log.Warn("revision conflict", slog.Int64("current", rev))

			return rev, fmt.Errorf("%s: %w", op, err)
		}
		metrics.DocumentWrites.WithLabelValues("error").Inc()
		log.Error("failed to save document", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	metrics.DocumentWrites.WithLabelValues("ok").Inc()
	log.Info("document saved", slog.Int64("revision", rev))

	return rev, nil
}

func (s *DatabaseService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
