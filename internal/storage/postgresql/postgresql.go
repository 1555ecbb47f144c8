package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	pgx4 "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/storage"
)

// Storage keeps the whole document in one JSONB row.
type Storage struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

const (
	// tables
	documentTable = "documents"

	documentID = 1
)

func New(ctx context.Context, storagePath string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Storage{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (s *Storage) Stop() {
	s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// migrate creates the table and the initial empty document.
func (s *Storage) migrate(ctx context.Context) error {
	const op = "storage.postgresql.migrate"

	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id SMALLINT PRIMARY KEY,
			body JSONB NOT NULL,
			revision BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("%s: create table: %w", op, err)
	}

	body, err := json.Marshal(models.EmptyDocument())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := s.sb.Insert(documentTable).
		Columns("id", "body", "revision", "updated_at").
		Values(documentID, body, 0, time.Now().UTC()).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: seed: %w", op, err)
	}

	return nil
}

// Load returns the stored document with its revision.
func (s *Storage) Load(ctx context.Context) (models.Document, error) {
	const op = "storage.postgresql.Load"

	query, args, err := s.sb.Select("body", "revision").
		From(documentTable).
		Where(sq.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var (
		body     []byte
		revision int64
	)
	if err := s.db.QueryRow(ctx, query, args...).Scan(&body, &revision); err != nil {
		if errors.Is(err, pgx4.ErrNoRows) {
			return models.Document{}, fmt.Errorf("%s: %w", op, storage.ErrDocumentNotFound)
		}
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	var doc models.Document
	if err := doc.Scan(body); err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	doc.Revision = revision

	return doc, nil
}

// Save replaces the document. When expected is set and differs from the
// stored revision nothing is written and storage.ErrRevisionConflict is returned.
func (s *Storage) Save(ctx context.Context, doc models.Document, expected *int64) (int64, error) {
	const op = "storage.postgresql.Save"

	tx, err := s.db.BeginTx(ctx, pgx4.TxOptions{
		IsoLevel:       pgx4.ReadCommitted,
		AccessMode:     pgx4.ReadWrite,
		DeferrableMode: pgx4.NotDeferrable,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query, args, err := s.sb.Select("revision").
		From(documentTable).
		Where(sq.Eq{"id": documentID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var current int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&current); err != nil {
		return 0, fmt.Errorf("%s: lock: %w", op, err)
	}

	if expected != nil && *expected != current {
		return current, fmt.Errorf("%s: %w", op, storage.ErrRevisionConflict)
	}

	next := current + 1
	doc.Revision = next

	body, err := doc.Value()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err = s.sb.Update(documentTable).
		Set("body", body).
		Set("revision", next).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("%s: update: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return next, nil
}
