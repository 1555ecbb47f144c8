package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"floral_essence/internal/catalog"
	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/logger/sl"
	"floral_essence/internal/transport/http/dto"
)

var ErrCategoryNotFound = errors.New("category not found")

type DocumentReader interface {
	Get(ctx context.Context) (models.Document, error)
}

// CatalogService serves the storefront view of the stored document.
type CatalogService struct {
	log  *slog.Logger
	docs DocumentReader
}

func NewCatalogService(log *slog.Logger, docs DocumentReader) *CatalogService {
	return &CatalogService{
		log:  log,
		docs: docs,
	}
}

// Sections returns the first page of every non-empty category.
func (s *CatalogService) Sections(ctx context.Context) ([]dto.SectionView, error) {
	const op = "catalog_service.Sections"

	log := s.log.With(slog.String("op", op))

	doc, err := s.docs.Get(ctx)
	if err != nil {
		log.Error("failed to load document", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sections, err := catalog.Sections(doc, nil)
	if err != nil {
		log.Error("failed to build sections", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]dto.SectionView, 0, len(sections))
	for _, sec := range sections {
		views = append(views, dto.NewSectionView(sec))
	}

	return views, nil
}

// Category returns one page of a category. A paginated page past the end
// comes back empty; load-more cursors stop at the last page.
func (s *CatalogService) Category(ctx context.Context, name string, page int) (dto.SectionView, error) {
	const op = "catalog_service.Category"

	log := s.log.With(
		slog.String("op", op),
		slog.String("category", name),
		slog.Int("page", page),
	)

	doc, err := s.docs.Get(ctx)
	if err != nil {
		log.Error("failed to load document", sl.Err(err))

		return dto.SectionView{}, fmt.Errorf("%s: %w", op, err)
	}

	if !slices.Contains(doc.Categories, name) {
		return dto.SectionView{}, fmt.Errorf("%s: %w: %q", op, ErrCategoryNotFound, name)
	}

	sec, err := catalog.CategorySection(doc, name, page)
	if err != nil {
		log.Warn("failed to build section", sl.Err(err))

		return dto.SectionView{}, fmt.Errorf("%s: %w", op, err)
	}

	return dto.NewSectionView(sec), nil
}
