package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document is the whole persisted state. It is read and replaced wholesale.
type Document struct {
	Products         []Product                   `json:"products"`
	Categories       []string                    `json:"categories"`
	Settings         GlobalSettings              `json:"settings"`
	CategorySettings map[string]CategorySettings `json:"categorySettings"`
	Media            MediaMetadata               `json:"media"`
	ZaloNumber       string                      `json:"zaloNumber"`
	Revision         int64                       `json:"revision"`
}

// EmptyDocument is what a fresh store starts with.
func EmptyDocument() Document {
	return Document{
		Products:         []Product{},
		Categories:       []string{},
		CategorySettings: map[string]CategorySettings{},
		Media:            MediaMetadata{},
	}
}

// Clone returns a deep copy so snapshots can be shared safely.
func (d Document) Clone() Document {
	c := d
	c.Products = make([]Product, len(d.Products))
	for i, p := range d.Products {
		c.Products[i] = p.Clone()
	}
	c.Categories = append([]string{}, d.Categories...)
	c.CategorySettings = make(map[string]CategorySettings, len(d.CategorySettings))
	for k, v := range d.CategorySettings {
		c.CategorySettings[k] = v
	}
	c.Media = d.Media.Clone()
	return c
}

// Normalize fills nil collections and migrates every product to the
// normalized category form.
func (d *Document) Normalize() {
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
	if d.CategorySettings == nil {
		d.CategorySettings = map[string]CategorySettings{}
	}
	if d.Media == nil {
		d.Media = MediaMetadata{}
	}
	for i := range d.Products {
		d.Products[i].Normalize()
	}
}

// Validate checks structural invariants of a document about to be stored.
func (d Document) Validate() error {
	var errs []string

	seenCat := make(map[string]struct{}, len(d.Categories))
	for _, c := range d.Categories {
		if c == "" {
			errs = append(errs, "category name must not be empty")
			continue
		}
		if _, ok := seenCat[c]; ok {
			errs = append(errs, fmt.Sprintf("duplicate category '%s'", c))
		}
		seenCat[c] = struct{}{}
	}

	seenID := make(map[string]struct{}, len(d.Products))
	for _, p := range d.Products {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("product '%s' has no id", p.Title))
			continue
		}
		if _, ok := seenID[p.ID]; ok {
			errs = append(errs, fmt.Sprintf("duplicate product id '%s'", p.ID))
		}
		seenID[p.ID] = struct{}{}
	}

	for name, s := range d.CategorySettings {
		if s.ItemsPerPage < 1 {
			errs = append(errs, fmt.Sprintf("category '%s': itemsPerPage must be at least 1", name))
		}
		if s.PaginationType != "" && !s.PaginationType.Valid() {
			errs = append(errs, fmt.Sprintf("category '%s': invalid pagination type '%s'", name, s.PaginationType))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Subject: "document", Errors: errs}
	}
	return nil
}

// Value implements driver.Valuer so the document can be stored as JSONB.
func (d Document) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB columns.
func (d *Document) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = EmptyDocument()
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported document source %T", value)
	}
}
