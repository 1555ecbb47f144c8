package jsonfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/storage"
	"floral_essence/internal/storage/jsonfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "database.json")

	s, err := jsonfile.New(path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &generic))
	for _, key := range []string{"products", "categories", "settings", "categorySettings", "media", "zaloNumber"} {
		assert.Contains(t, generic, key)
	}

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Products)
	assert.Equal(t, int64(0), doc.Revision)
}

func TestNew_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products":[],"categories":["Gấu Hoa"],"zaloNumber":"0911"}`), 0644))

	s, err := jsonfile.New(path)
	require.NoError(t, err)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gấu Hoa"}, doc.Categories)
	assert.Equal(t, "0911", doc.ZaloNumber)
}

func TestStorage_Save(t *testing.T) {
	ctx := context.Background()
	s, err := jsonfile.New(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		doc := models.DefaultDocument()

		rev, err := s.Save(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rev)

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Revision)
		assert.Equal(t, doc.Categories, got.Categories)
		assert.Equal(t, doc.Products, got.Products)
	})

	t.Run("matching revision", func(t *testing.T) {
		expected := int64(1)
		rev, err := s.Save(ctx, models.EmptyDocument(), &expected)
		require.NoError(t, err)
		assert.Equal(t, int64(2), rev)
	})

	t.Run("stale revision", func(t *testing.T) {
		stale := int64(1)
		rev, err := s.Save(ctx, models.DefaultDocument(), &stale)
		assert.ErrorIs(t, err, storage.ErrRevisionConflict)
		assert.Equal(t, int64(2), rev)

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got.Products)
	})

	t.Run("no temp files left", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(s.Path()))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestStorage_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s, err := jsonfile.New(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(ctx, models.DefaultDocument(), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), doc.Revision)
	assert.Len(t, doc.Products, len(models.SampleProducts()))
}

func TestStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := jsonfile.New(path)
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	assert.Error(t, err)
}
