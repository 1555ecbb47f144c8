package storage

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrRevisionConflict = errors.New("document revision conflict")
	ErrorNoSuchKey      = errors.New("no such key")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileExists      = errors.New("file already exists")
	ErrPathEscape      = errors.New("path escapes storage directory")
)
