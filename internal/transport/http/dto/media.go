package dto

import "mime/multipart"

// UploadInput is one file taken from a multipart form.
type UploadInput struct {
	File *multipart.FileHeader `validate:"required"`
}

// UploadQuery filters the upload listing by a case-insensitive substring.
type UploadQuery struct {
	Q string `query:"q"`
}
