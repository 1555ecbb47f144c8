package models

import (
	"net/url"
	"slices"
	"strings"
)

// ImageWithMetadata is a product image carrying its own SEO fields.
type ImageWithMetadata struct {
	URL         string `json:"url"`
	Filename    string `json:"filename,omitempty"`
	Alt         string `json:"alt,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Product is a catalog item. Category and Categories both travel on the wire:
// Category is the primary category kept for older documents, Categories is the
// extended membership list and wins when present.
type Product struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	OriginalPrice      float64             `json:"originalPrice"`
	SalePrice          float64             `json:"salePrice"`
	Images             []string            `json:"images"`                       // legacy URL list
	ImagesWithMetadata []ImageWithMetadata `json:"imagesWithMetadata,omitempty"` // images with SEO fields
	Category           string              `json:"category"`
	Categories         []string            `json:"categories,omitempty"`
	SKU                string              `json:"sku,omitempty"`
	SwitchInterval     int                 `json:"switchInterval,omitempty"` // deprecated, category interval wins
	AspectRatio        string              `json:"aspectRatio,omitempty"`
	Order              *int                `json:"order,omitempty"`
	ImageTransition    TransitionEffect    `json:"imageTransition,omitempty"`
}

// CategoryList returns the categories the product is visible in.
func (p Product) CategoryList() []string {
	if len(p.Categories) > 0 {
		return p.Categories
	}
	if p.Category == "" {
		return nil
	}
	return []string{p.Category}
}

func (p Product) InCategory(name string) bool {
	for _, c := range p.CategoryList() {
		if c == name {
			return true
		}
	}
	return false
}

// SortOrder treats a missing order as zero.
func (p Product) SortOrder() int {
	if p.Order == nil {
		return 0
	}
	return *p.Order
}

// Normalize migrates the product to the normalized category form: Categories
// always holds the membership set and Category mirrors its first entry.
func (p *Product) Normalize() {
	seen := make(map[string]struct{}, len(p.Categories)+1)
	var cats []string
	for _, c := range p.CategoryList() {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}

	p.Categories = cats
	if len(cats) > 0 {
		p.Category = cats[0]
	} else {
		p.Category = ""
	}

	if p.Images == nil {
		p.Images = []string{}
	}
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	c := p
	// empty lists stay non-nil
	c.Images = slices.Clone(p.Images)
	c.ImagesWithMetadata = slices.Clone(p.ImagesWithMetadata)
	c.Categories = slices.Clone(p.Categories)
	if p.Order != nil {
		o := *p.Order
		c.Order = &o
	}
	return c
}

// ReferencesFile reports whether any image URL of the product contains filename.
func (p Product) ReferencesFile(filename string) bool {
	for _, u := range p.Images {
		if strings.Contains(u, filename) {
			return true
		}
	}
	for _, img := range p.ImagesWithMetadata {
		if strings.Contains(img.URL, filename) {
			return true
		}
	}
	return false
}

// FilenameFromURL returns the decoded last path segment of an image URL.
func FilenameFromURL(raw string) string {
	i := strings.LastIndex(raw, "/")
	last := raw[i+1:]
	if q := strings.IndexAny(last, "?#"); q >= 0 {
		last = last[:q]
	}
	decoded, err := url.PathUnescape(last)
	if err != nil {
		return last
	}
	return decoded
}
