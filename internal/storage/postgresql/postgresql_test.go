package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/storage"
	"floral_essence/internal/storage/postgresql"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) string {
	t.Helper()

	if testing.Short() || os.Getenv("FLORAL_INTEGRATION") == "" {
		t.Skip("set FLORAL_INTEGRATION=1 to run postgres integration tests")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = pgContainer.Terminate(ctx)
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
}

func newStorage(t *testing.T) *postgresql.Storage {
	t.Helper()

	dsn := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := postgresql.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Stop)

	return s
}

func TestStorage_LoadInitial(t *testing.T) {
	s := newStorage(t)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, doc.Products)
	assert.Empty(t, doc.Categories)
	assert.Equal(t, int64(0), doc.Revision)
}

func TestStorage_SaveRoundTrip(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	doc := models.DefaultDocument()
	doc.ZaloNumber = gofakeit.Phone()
	doc.Media["rose.jpg"] = models.ImageMeta{Alt: gofakeit.Sentence(3)}

	rev, err := s.Save(ctx, doc, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev, got.Revision)
	assert.Equal(t, doc.ZaloNumber, got.ZaloNumber)
	assert.Equal(t, doc.Categories, got.Categories)
	assert.Len(t, got.Products, len(doc.Products))
	assert.Equal(t, doc.Media["rose.jpg"], got.Media["rose.jpg"])
}

func TestStorage_RevisionConflict(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	stale := int64(0)
	_, err := s.Save(ctx, models.EmptyDocument(), &stale)
	require.NoError(t, err)

	_, err = s.Save(ctx, models.EmptyDocument(), &stale)
	assert.ErrorIs(t, err, storage.ErrRevisionConflict)

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Revision)
}

func TestStorage_ConcurrentSaves(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(ctx, models.EmptyDocument(), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), doc.Revision)
}
