package dto

import (
	"floral_essence/internal/catalog"
	"floral_essence/internal/domain/models"
)

// CatalogQuery selects the page of a category section.
type CatalogQuery struct {
	Page int `query:"page" validate:"omitempty,min=1"`
}

// SectionView is a category section as served by the catalog endpoints.
type SectionView struct {
	Category   string           `json:"category"`
	Label      string           `json:"label"`
	Mode       string           `json:"paginationType"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Shown      int              `json:"shown"`
	Total      int              `json:"total"`
	HasMore    bool             `json:"hasMore"`
	Controls   catalog.Controls `json:"controls"`
	Cards      []CardView       `json:"cards"`
}

type CardView struct {
	Product         models.Product          `json:"product"`
	Images          []catalog.ResolvedImage `json:"images"`
	Transition      string                  `json:"transition"`
	IntervalMs      int                     `json:"intervalMs"`
	AspectRatio     string                  `json:"aspectRatio"`
	Price           string                  `json:"price"`
	OriginalPrice   string                  `json:"originalPrice,omitempty"`
	DiscountPercent int                     `json:"discountPercent,omitempty"`
}

// NewSectionView flattens a computed section and formats its prices.
func NewSectionView(s catalog.Section) SectionView {
	v := SectionView{
		Category:   s.Category,
		Label:      s.Label,
		Mode:       string(s.Mode),
		Page:       s.Page,
		TotalPages: s.TotalPages,
		Shown:      s.Shown,
		Total:      s.Total,
		HasMore:    s.HasMore,
		Controls:   s.Controls,
		Cards:      make([]CardView, 0, len(s.Cards)),
	}

	for _, c := range s.Cards {
		card := CardView{
			Product:     c.Product,
			Images:      c.Images,
			Transition:  string(c.Transition),
			IntervalMs:  c.IntervalMs,
			AspectRatio: c.AspectRatio,
			Price:       catalog.FormatVND(c.Product.SalePrice),
		}
		if pct := catalog.DiscountPercent(c.Product.OriginalPrice, c.Product.SalePrice); pct > 0 {
			card.OriginalPrice = catalog.FormatVND(c.Product.OriginalPrice)
			card.DiscountPercent = pct
		}
		v.Cards = append(v.Cards, card)
	}

	return v
}
