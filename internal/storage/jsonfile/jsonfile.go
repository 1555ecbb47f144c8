// Package jsonfile keeps the whole document in a single JSON file on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/storage"
)

type Storage struct {
	mu   sync.RWMutex
	path string
}

// New opens path, creating it with the empty document when missing.
func New(path string) (*Storage, error) {
	const op = "storage.jsonfile.New"

	s := &Storage{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(models.EmptyDocument()); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

func (s *Storage) Load(ctx context.Context) (models.Document, error) {
	const op = "storage.jsonfile.Load"

	if err := ctx.Err(); err != nil {
		return models.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read()
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	return doc, nil
}

// Save replaces the file atomically. When expected is set and differs from
// the stored revision nothing is written and storage.ErrRevisionConflict is returned.
func (s *Storage) Save(ctx context.Context, doc models.Document, expected *int64) (int64, error) {
	const op = "storage.jsonfile.Save"

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if expected != nil && *expected != current.Revision {
		return current.Revision, fmt.Errorf("%s: %w", op, storage.ErrRevisionConflict)
	}

	doc.Revision = current.Revision + 1

	if err := s.write(doc); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return doc.Revision, nil
}

func (s *Storage) read() (models.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Document{}, storage.ErrDocumentNotFound
		}
		return models.Document{}, err
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}

	return doc, nil
}

// write goes through a temp file in the same directory so readers never see
// a partially written document.
func (s *Storage) write(doc models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".database-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
