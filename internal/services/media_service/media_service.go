package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/logger/sl"
	"floral_essence/internal/metrics"
	"floral_essence/internal/storage"
	filestorage "floral_essence/internal/storage/filestorage"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFiles       = errors.New("no files uploaded")
	ErrTooManyFiles  = errors.New("too many files")
	ErrEmptyFilename = errors.New("new file name is empty")
)

// saveAttempts bounds retries when a generated name is already taken.
const saveAttempts = 3

var allowedMIME = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type NameGenerator interface {
	ForUpload(original string) string
	ForRename(oldName, desired string) (string, error)
}

type MediaService struct {
	log         *slog.Logger
	fileStorage filestorage.FileStorage
	names       NameGenerator
	maxSize     int64
	maxFiles    int
}

func NewMediaService(log *slog.Logger, fileStorage filestorage.FileStorage, names NameGenerator, maxSize int64, maxFiles int) *MediaService {
	return &MediaService{
		log:         log,
		fileStorage: fileStorage,
		names:       names,
		maxSize:     maxSize,
		maxFiles:    maxFiles,
	}
}

// URLFor joins the public uploads base with a stored file name.
func URLFor(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + name
}

// Upload validates and stores one image. base is the public uploads URL.
func (s *MediaService) Upload(ctx context.Context, base string, file *multipart.FileHeader) (models.UploadResult, error) {
	const op = "media_service.Upload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("original_name", file.Filename),
	)

	if err := s.validate(file); err != nil {
		metrics.UploadOperations.WithLabelValues("upload", "rejected").Inc()
		log.Warn("upload rejected", sl.Err(err))

		return models.UploadResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.save(ctx, base, file)
	if err != nil {
		metrics.UploadOperations.WithLabelValues("upload", "error").Inc()
		log.Error("failed to save file", sl.Err(err))

		return models.UploadResult{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.UploadOperations.WithLabelValues("upload", "ok").Inc()
	log.Info("file uploaded", slog.String("filename", res.Filename), slog.Int64("size", res.Size))

	return res, nil
}

// UploadMany stores every file or none of them.
func (s *MediaService) UploadMany(ctx context.Context, base string, files []*multipart.FileHeader) ([]models.UploadResult, error) {
	const op = "media_service.UploadMany"

	log := s.log.With(
		slog.String("op", op),
		slog.Int("count", len(files)),
	)

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoFiles)
	}
	if len(files) > s.maxFiles {
		return nil, fmt.Errorf("%s: %w: %d > %d", op, ErrTooManyFiles, len(files), s.maxFiles)
	}

	for _, f := range files {
		if err := s.validate(f); err != nil {
			metrics.UploadOperations.WithLabelValues("upload", "rejected").Inc()
			log.Warn("upload rejected", slog.String("original_name", f.Filename), sl.Err(err))

			return nil, fmt.Errorf("%s: %s: %w", op, f.Filename, err)
		}
	}

	results := make([]models.UploadResult, 0, len(files))
	for _, f := range files {
		res, err := s.save(ctx, base, f)
		if err != nil {
			// Откатываем уже сохраненные файлы
			for _, done := range results {
				if derr := s.fileStorage.Delete(ctx, done.Filename); derr != nil {
					log.Warn("rollback failed", slog.String("filename", done.Filename), sl.Err(derr))
				}
			}
			metrics.UploadOperations.WithLabelValues("upload", "error").Inc()
			log.Error("failed to save file", slog.String("original_name", f.Filename), sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}
		results = append(results, res)
	}

	metrics.UploadOperations.WithLabelValues("upload", "ok").Add(float64(len(results)))
	log.Info("files uploaded")

	return results, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *MediaService) Delete(ctx context.Context, name string) error {
	const op = "media_service.Delete"

	log := s.log.With(
		slog.String("op", op),
		slog.String("filename", name),
	)

	err := s.fileStorage.Delete(ctx, name)
	switch {
	case err == nil:
		log.Info("file deleted")
	case errors.Is(err, storage.ErrFileNotFound):
		log.Info("file already absent")
	default:
		metrics.UploadOperations.WithLabelValues("delete", "error").Inc()
		log.Warn("failed to delete file", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.UploadOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}

// Rename gives a stored file an SEO name derived from desired. The old
// extension is kept.
func (s *MediaService) Rename(ctx context.Context, base, oldName, desired string) (models.RenameResult, error) {
	const op = "media_service.Rename"

	log := s.log.With(
		slog.String("op", op),
		slog.String("old_filename", oldName),
		slog.String("desired", desired),
	)

	if strings.TrimSpace(desired) == "" {
		return models.RenameResult{}, fmt.Errorf("%s: %w", op, ErrEmptyFilename)
	}

	newName, err := s.names.ForRename(oldName, desired)
	if err != nil {
		log.Warn("unusable file name", sl.Err(err))

		return models.RenameResult{}, fmt.Errorf("%s: %w: %w", op, ErrEmptyFilename, err)
	}

	if err := s.fileStorage.Rename(ctx, oldName, newName); err != nil {
		metrics.UploadOperations.WithLabelValues("rename", "error").Inc()
		log.Warn("failed to rename file", sl.Err(err))

		return models.RenameResult{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.UploadOperations.WithLabelValues("rename", "ok").Inc()
	log.Info("file renamed", slog.String("new_filename", newName))

	return models.RenameResult{
		OldFilename: oldName,
		NewFilename: newName,
		NewURL:      URLFor(base, newName),
	}, nil
}

// List returns stored images, newest first, optionally filtered by a
// case-insensitive substring of the file name.
func (s *MediaService) List(ctx context.Context, base, query string) ([]models.UploadedImage, error) {
	const op = "media_service.List"

	files, err := s.fileStorage.List(ctx)
	if err != nil {
		s.log.Error("failed to list uploads", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	images := make([]models.UploadedImage, 0, len(files))
	for _, f := range files {
		if query != "" && !strings.Contains(strings.ToLower(f.Name), query) {
			continue
		}
		images = append(images, models.UploadedImage{
			Filename:   f.Name,
			URL:        URLFor(base, f.Name),
			Size:       f.Size,
			UploadedAt: f.ModTime,
		})
	}

	return images, nil
}

// UploadsDir is reported by the health endpoint.
func (s *MediaService) UploadsDir() string {
	return s.fileStorage.GetBaseDir()
}

func (s *MediaService) validate(file *multipart.FileHeader) error {
	if file.Size > s.maxSize {
		return fmt.Errorf("%w: %d bytes", storage.ErrFileTooLarge, file.Size)
	}
	if !models.IsImageFilename(file.Filename) {
		return fmt.Errorf("%w: extension of %s", storage.ErrInvalidFileType, file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return err
	}
	if !mimetype.EqualsAny(mtype.String(), allowedMIME...) {
		return fmt.Errorf("%w: content is %s", storage.ErrInvalidFileType, mtype.String())
	}

	return nil
}

func (s *MediaService) save(ctx context.Context, base string, file *multipart.FileHeader) (models.UploadResult, error) {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		name := s.names.ForUpload(file.Filename)

		size, err := s.fileStorage.Save(ctx, file, name)
		if errors.Is(err, storage.ErrFileExists) {
			lastErr = err
			continue
		}
		if err != nil {
			return models.UploadResult{}, err
		}

		metrics.UploadedBytes.Observe(float64(size))

		return models.UploadResult{
			URL:          URLFor(base, name),
			Filename:     name,
			OriginalName: file.Filename,
			Size:         size,
		}, nil
	}

	return models.UploadResult{}, lastErr
}
