// Package catalog decides which products of a category are shown and how
// each of them is presented. Everything here is pure except Pager and Rotator.
package catalog

import (
	"errors"
	"sort"

	"floral_essence/internal/domain/models"
)

var ErrInvalidPageSize = errors.New("catalog: items per page must be at least 1")

// View is the visible part of one category.
type View struct {
	Category   string                `json:"category"`
	Label      string                `json:"label"`
	Mode       models.PaginationType `json:"paginationType"`
	Items      []models.Product      `json:"items"`
	Shown      int                   `json:"shown"`
	Total      int                   `json:"total"`
	HasMore    bool                  `json:"hasMore"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"totalPages"`
	Controls   Controls              `json:"controls"`
}

// ProductsInCategory keeps the products visible in name, preserving input order.
func ProductsInCategory(products []models.Product, name string) []models.Product {
	var out []models.Product
	for _, p := range products {
		if p.InCategory(name) {
			out = append(out, p)
		}
	}
	return out
}

// SortByOrder returns a copy sorted by display order. Ties keep input order.
func SortByOrder(products []models.Product) []models.Product {
	sorted := append([]models.Product(nil), products...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder() < sorted[j].SortOrder()
	})
	return sorted
}

// Select computes the subset of products shown for the given cursor. A page
// below 1 counts as 1. A page past the end of a paginated category yields no
// items; a load-more cursor past the end is clamped to the last page.
func Select(products []models.Product, s models.CategorySettings, page int) (View, error) {
	n := s.ItemsPerPage
	if n < 1 {
		return View{}, ErrInvalidPageSize
	}
	if page < 1 {
		page = 1
	}

	sorted := SortByOrder(products)
	total := len(sorted)
	totalPages := (total + n - 1) / n

	mode := s.PaginationType
	if !mode.Valid() {
		mode = models.PaginationNone
	}

	var items []models.Product
	switch mode {
	case models.PaginationPages:
		if page <= totalPages {
			start := (page - 1) * n
			items = window(sorted, start, start+n)
		} else {
			items = []models.Product{}
		}
	case models.PaginationLoadMore, models.PaginationInfinite:
		// page*n must not overflow for huge cursors
		page = min(page, max(totalPages, 1))
		items = window(sorted, 0, page*n)
	default:
		items = window(sorted, 0, n)
	}

	v := View{
		Category:   s.Name,
		Label:      s.Label(),
		Mode:       mode,
		Items:      items,
		Shown:      len(items),
		Total:      total,
		HasMore:    len(items) < total,
		Page:       page,
		TotalPages: totalPages,
	}
	if mode == models.PaginationPages {
		v.HasMore = page < totalPages
	}
	v.Controls = controlsFor(v)

	return v, nil
}

func window(products []models.Product, from, to int) []models.Product {
	if from > len(products) {
		from = len(products)
	}
	if to > len(products) {
		to = len(products)
	}
	if to < from {
		to = from
	}
	return products[from:to]
}
