package catalog

import "floral_essence/internal/domain/models"

// ResolvedImage is an image ready for display.
type ResolvedImage struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Alt         string `json:"alt"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Card is a product with its presentation resolved.
type Card struct {
	Product     models.Product          `json:"product"`
	Images      []ResolvedImage         `json:"images"`
	Transition  models.TransitionEffect `json:"transition"`
	IntervalMs  int                     `json:"intervalMs"`
	AspectRatio string                  `json:"aspectRatio"`
}

// Resolve applies the display rules for one product: image metadata, then
// the Media Library override, transition and rotation interval.
func Resolve(p models.Product, cs models.CategorySettings, gs models.GlobalSettings, media models.MediaMetadata) Card {
	return Card{
		Product:     p,
		Images:      ResolveImages(p, media),
		Transition:  ResolveTransition(p, cs, gs),
		IntervalMs:  ResolveInterval(p, cs),
		AspectRatio: resolveAspect(p, gs),
	}
}

func ResolveImages(p models.Product, media models.MediaMetadata) []ResolvedImage {
	var base []models.ImageWithMetadata
	if len(p.ImagesWithMetadata) > 0 {
		base = p.ImagesWithMetadata
	} else {
		base = make([]models.ImageWithMetadata, 0, len(p.Images))
		for _, u := range p.Images {
			base = append(base, models.ImageWithMetadata{URL: u, Alt: p.Title, Title: p.Title})
		}
	}

	out := make([]ResolvedImage, 0, len(base))
	for _, img := range base {
		name := models.FilenameFromURL(img.URL)
		meta := media[name]

		out = append(out, ResolvedImage{
			URL:         img.URL,
			Filename:    name,
			Alt:         firstNonEmpty(meta.Alt, img.Alt, p.Title),
			Title:       firstNonEmpty(meta.Title, img.Title, p.Title),
			Description: firstNonEmpty(meta.Description, img.Description),
		})
	}

	return out
}

// ResolveTransition: product override, category default, global default, fade.
func ResolveTransition(p models.Product, cs models.CategorySettings, gs models.GlobalSettings) models.TransitionEffect {
	for _, t := range []models.TransitionEffect{p.ImageTransition, cs.ImageTransition, gs.DefaultTransition} {
		if t != "" {
			return t
		}
	}
	return models.TransitionFade
}

// ResolveInterval uses the category interval. The legacy per-product
// interval only counts when the category has none.
func ResolveInterval(p models.Product, cs models.CategorySettings) int {
	if cs.ImageInterval > 0 {
		return cs.ImageInterval
	}
	if p.SwitchInterval > 0 {
		return p.SwitchInterval
	}
	return models.DefaultImageInterval
}

func resolveAspect(p models.Product, gs models.GlobalSettings) string {
	if p.AspectRatio != "" {
		return p.AspectRatio
	}
	return gs.ResolvedAspectRatio()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
