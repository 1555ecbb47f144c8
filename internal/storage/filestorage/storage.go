package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/storage"
)

// FileStorage хранит загруженные изображения в одном каталоге.
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, name string) (fileSize int64, err error)
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, oldName, newName string) error
	List(ctx context.Context) ([]FileInfo, error)
	Exists(name string) (bool, error)
	GetFullPath(name string) string
	BaseURL() string
	GetBaseDir() string
}

type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// LocalFileStorage реализация для локальной файловой системы
type LocalFileStorage struct {
	mu      sync.Mutex
	baseDir string // например: "./uploads"
	baseURL string // например: "http://localhost:3001/uploads", может быть пустым
}

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	// Создаем директорию, если она не существует
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: abs,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// resolve maps a bare file name to a path inside baseDir.
func (s *LocalFileStorage) resolve(name string) (string, error) {
	full := filepath.Join(s.baseDir, name)

	rel, err := filepath.Rel(s.baseDir, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", storage.ErrPathEscape
	}

	return full, nil
}

// Save writes the upload under name. An existing file is never overwritten.
func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	filePath, err := s.resolve(name)
	if err != nil {
		return 0, err
	}

	src, err := file.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	s.mu.Lock()
	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, storage.ErrFileExists
		}
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, src)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		<-done
		_ = os.Remove(filePath)
		return 0, ctx.Err()
	}

	return size, nil
}

// Delete удаляет файл из хранилища
func (s *LocalFileStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrFileNotFound
		}
		return err
	}

	return nil
}

// Rename moves oldName to newName without clobbering an existing file.
func (s *LocalFileStorage) Rename(ctx context.Context, oldName, newName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	oldPath, err := s.resolve(oldName)
	if err != nil {
		return err
	}
	newPath, err := s.resolve(newName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(oldPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrFileNotFound
		}
		return err
	}

	if _, err := os.Stat(newPath); err == nil {
		return storage.ErrFileExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return os.Rename(oldPath, newPath)
}

// List returns the image files of the directory, newest first.
func (s *LocalFileStorage) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !models.IsImageFilename(e.Name()) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			// удален между ReadDir и Info
			continue
		}

		files = append(files, FileInfo{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

func (s *LocalFileStorage) Exists(name string) (bool, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalFileStorage) GetFullPath(name string) string {
	return filepath.Join(s.baseDir, name)
}

// BaseURL возвращает базовый URL для доступа к файлам
func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}
