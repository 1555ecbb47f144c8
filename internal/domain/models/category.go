package models

import "fmt"

type PaginationType string

const (
	PaginationNone     PaginationType = "none"
	PaginationLoadMore PaginationType = "loadmore"
	PaginationInfinite PaginationType = "infinite"
	PaginationPages    PaginationType = "pagination"
)

func (p PaginationType) Valid() bool {
	switch p {
	case PaginationNone, PaginationLoadMore, PaginationInfinite, PaginationPages:
		return true
	}
	return false
}

type TransitionEffect string

const (
	TransitionNone TransitionEffect = "none"
	TransitionFade TransitionEffect = "fade"
)

var transitionEffects = map[TransitionEffect]struct{}{
	"none": {}, "fade": {},
	"slide-left": {}, "slide-right": {}, "slide-up": {}, "slide-down": {},
	"zoom-in": {}, "zoom-out": {},
	"flip-horizontal": {}, "flip-vertical": {},
	"rotate-left": {}, "rotate-right": {},
	"blur-fade": {}, "glitch": {},
	"wipe-left": {}, "wipe-right": {}, "wipe-up": {}, "wipe-down": {},
	"diagonal-left": {}, "diagonal-right": {},
	"cube-left": {}, "cube-right": {},
	"bounce": {}, "elastic": {}, "swing": {},
}

func (t TransitionEffect) Valid() bool {
	_, ok := transitionEffects[t]
	return ok
}

const (
	DefaultItemsPerPage  = 8
	DefaultImageInterval = 3000 // ms
)

// CategorySettings controls how a category section is laid out. Keyed by
// category name in Document.CategorySettings.
type CategorySettings struct {
	Name            string           `json:"name"`
	DisplayName     string           `json:"displayName,omitempty"`
	ItemsPerPage    int              `json:"itemsPerPage" validate:"min=1"`
	PaginationType  PaginationType   `json:"paginationType"`
	ImageTransition TransitionEffect `json:"imageTransition,omitempty"`
	ImageInterval   int              `json:"imageInterval,omitempty" validate:"omitempty,min=1"`
}

func DefaultCategorySettings(name string) CategorySettings {
	return CategorySettings{
		Name:            name,
		ItemsPerPage:    DefaultItemsPerPage,
		PaginationType:  PaginationNone,
		ImageTransition: TransitionFade,
	}
}

// Label is the section header: the display name override or the category name.
func (s CategorySettings) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// Validate checks the fields an editor may change.
func (s CategorySettings) Validate() error {
	var errs []string
	if s.ItemsPerPage < 1 {
		errs = append(errs, "itemsPerPage must be at least 1")
	}
	if !s.PaginationType.Valid() {
		errs = append(errs, fmt.Sprintf("invalid pagination type '%s'", s.PaginationType))
	}
	if s.ImageTransition != "" && !s.ImageTransition.Valid() {
		errs = append(errs, fmt.Sprintf("invalid image transition '%s'", s.ImageTransition))
	}
	if s.ImageInterval < 0 {
		errs = append(errs, "imageInterval must not be negative")
	}
	if len(errs) > 0 {
		return &ValidationError{Subject: "category settings", Errors: errs}
	}
	return nil
}
