package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/logger/sl"
	"floral_essence/internal/state"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Keys of the persisted slices.
const (
	KeyProducts         = "flowers_data"
	KeyCategories       = "categories_data"
	KeyGlobalSettings   = "global_settings"
	KeyCategorySettings = "category_settings"
	KeyMedia            = "media_metadata"
	KeyZaloNumber       = "zalo_number"
	KeyRevision         = "document_revision"

	// KeyUnpublished marks local edits that were not pushed yet.
	KeyUnpublished = "unpublished_changes"
)

var ErrSessionNotFound = errors.New("session not found")

// Entry is one JSON encoded slice of the document.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// Session is a named flag with an expiry.
type Session struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	ExpiresAt time.Time `gorm:"index"`
}

type Store struct {
	log *slog.Logger
	db  *gorm.DB
}

// Open connects to the sqlite file at path and migrates the schema.
func Open(log *slog.Logger, path string) (*Store, error) {
	const op = "localstore.Open"

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.AutoMigrate(&Entry{}, &Session{}); err != nil {
		return nil, fmt.Errorf("%s: migrate: %w", op, err)
	}

	return &Store{log: log, db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type slot struct {
	key   string
	slice state.Slice
	get   func(*models.Document) any
}

var slots = []slot{
	{KeyProducts, state.SliceProducts, func(d *models.Document) any { return &d.Products }},
	{KeyCategories, state.SliceCategories, func(d *models.Document) any { return &d.Categories }},
	{KeyGlobalSettings, state.SliceSettings, func(d *models.Document) any { return &d.Settings }},
	{KeyCategorySettings, state.SliceCategorySettings, func(d *models.Document) any { return &d.CategorySettings }},
	{KeyMedia, state.SliceMedia, func(d *models.Document) any { return &d.Media }},
	{KeyZaloNumber, state.SliceZalo, func(d *models.Document) any { return &d.ZaloNumber }},
	{KeyRevision, state.SliceRevision, func(d *models.Document) any { return &d.Revision }},
}

// Load reads every stored slice into an empty document. The returned set
// names the slices that were present.
func (s *Store) Load(ctx context.Context) (models.Document, state.Slice, error) {
	const op = "localstore.Load"

	var entries []Entry
	if err := s.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return models.Document{}, 0, fmt.Errorf("%s: %w", op, err)
	}

	byKey := make(map[string]string, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e.Value
	}

	doc := models.EmptyDocument()
	var found state.Slice
	for _, it := range slots {
		raw, ok := byKey[it.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), it.get(&doc)); err != nil {
			// Битая запись считается отсутствующей и будет перезаписана.
			s.log.Warn("skip unreadable local entry", slog.String("key", it.key), slog.String("op", op))
			continue
		}
		found |= it.slice
	}
	doc.Normalize()

	return doc, found, nil
}

// SaveSlice upserts one slice under key.
func (s *Store) SaveSlice(ctx context.Context, key string, v any) error {
	const op = "localstore.SaveSlice"

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&Entry{Key: key, Value: string(raw), UpdatedAt: time.Now().UTC()}).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadSlice decodes the entry under key into v. It reports false when the
// key was never written.
func (s *Store) LoadSlice(ctx context.Context, key string, v any) (bool, error) {
	const op = "localstore.LoadSlice"

	var e Entry
	err := s.db.WithContext(ctx).Where(&Entry{Key: key}).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal([]byte(e.Value), v); err != nil {
		return false, fmt.Errorf("%s: %s: %w", op, key, err)
	}
	return true, nil
}

// SaveDocument writes the slices named in which, all in one transaction.
func (s *Store) SaveDocument(ctx context.Context, doc models.Document, which state.Slice) error {
	const op = "localstore.SaveDocument"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := &Store{log: s.log, db: tx}
		for _, it := range slots {
			if !which.Has(it.slice) {
				continue
			}
			if err := txStore.SaveSlice(ctx, it.key, it.get(&doc)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Persister returns a store subscriber writing the changed slices through.
func (s *Store) Persister(ctx context.Context) state.Subscriber {
	return func(ev state.Event) error {
		doc := ev.Snapshot.Document()
		if err := s.SaveDocument(ctx, doc, ev.Changed); err != nil {
			s.log.Error("failed to persist local state",
				slog.String("changed", ev.Changed.String()),
				sl.Err(err),
			)
			return err
		}
		return nil
	}
}

func (s *Store) SetSession(ctx context.Context, name, value string, ttl time.Duration) error {
	const op = "localstore.SetSession"

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Session{Name: name, Value: value, ExpiresAt: time.Now().UTC().Add(ttl)}).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Session returns the value stored under name. Expired sessions are removed
// and reported as ErrSessionNotFound.
func (s *Store) Session(ctx context.Context, name string) (string, error) {
	const op = "localstore.Session"

	var sess Session
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if time.Now().UTC().After(sess.ExpiresAt) {
		if err := s.ClearSession(ctx, name); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}

	return sess.Value, nil
}

func (s *Store) ClearSession(ctx context.Context, name string) error {
	const op = "localstore.ClearSession"

	if err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&Session{}).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
