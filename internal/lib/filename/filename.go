// Package filename builds collision-resistant, URL-safe names for uploaded images.
package filename

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	suffixAlphabet = "0123456789"
	suffixLength   = 6
	fallbackBase   = "image"
)

var ErrEmptyName = errors.New("file name is empty after sanitizing")

type Generator struct {
	suffix func() string
}

func New() (*Generator, error) {
	gen, err := nanoid.CustomASCII(suffixAlphabet, suffixLength)
	if err != nil {
		return nil, fmt.Errorf("filename.New: %w", err)
	}

	return &Generator{suffix: gen}, nil
}

// NewWithSuffix is used where the suffix must be predictable.
func NewWithSuffix(suffix func() string) *Generator {
	return &Generator{suffix: suffix}
}

// ForUpload derives the stored name of an uploaded file:
// slug(base) + "-" + 6 digits + lower-cased extension.
func (g *Generator) ForUpload(original string) string {
	ext := filepath.Ext(original)
	base := Slugify(strings.TrimSuffix(filepath.Base(original), ext))
	if base == "" {
		base = fallbackBase
	}

	return base + "-" + g.suffix() + strings.ToLower(ext)
}

// ForRename derives the SEO name for an existing upload. The extension of the
// old name is kept as is.
func (g *Generator) ForRename(oldName, desired string) (string, error) {
	base := Slugify(desired)
	if base == "" {
		return "", ErrEmptyName
	}

	return base + "-" + g.suffix() + filepath.Ext(oldName), nil
}

// Slugify lower-cases s, strips Vietnamese diacritics and joins the remaining
// alphanumeric runs with dashes.
func Slugify(s string) string {
	return slug.Make(strings.TrimSpace(s))
}
