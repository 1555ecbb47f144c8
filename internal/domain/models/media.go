package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ImageMeta holds the SEO fields of an uploaded file.
type ImageMeta struct {
	Alt         string `json:"alt,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

func (m ImageMeta) IsZero() bool {
	return m == ImageMeta{}
}

// MediaMetadata maps an upload filename to its SEO fields. Entries live
// independently of products.
type MediaMetadata map[string]ImageMeta

func (m MediaMetadata) Clone() MediaMetadata {
	if m == nil {
		return MediaMetadata{}
	}
	c := make(MediaMetadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// UploadedImage is an entry of the upload directory listing.
type UploadedImage struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadResult describes a stored upload.
type UploadResult struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

// RenameResult describes a renamed upload.
type RenameResult struct {
	OldFilename string `json:"oldFilename"`
	NewFilename string `json:"newFilename"`
	NewURL      string `json:"newUrl"`
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

// IsImageFilename checks the extension against the accepted image types.
func IsImageFilename(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ValidationError aggregates every problem found in a value.
type ValidationError struct {
	Subject string
	Errors  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Subject, strings.Join(e.Errors, "; "))
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
