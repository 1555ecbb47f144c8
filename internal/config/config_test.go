package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"floral_essence/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	return path
}

func TestMustLoadPath_Defaults(t *testing.T) {
	path := writeConfig(t, "env: dev\n")

	cfg := config.MustLoadPath(path)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "3001", cfg.HTTP.Port)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, int64(5*1024*1024), cfg.FileStorage.MaxSize)
	assert.Equal(t, 10, cfg.FileStorage.MaxFiles)
	assert.Equal(t, config.DriverFile, cfg.Database.Driver)
	assert.Equal(t, config.CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestMustLoadPath_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "admin:\n  username: yaml-admin\n")
	t.Setenv("ADMIN_USERNAME", "env-admin")
	t.Setenv("PORT", "9090")

	cfg := config.MustLoadPath(path)

	assert.Equal(t, "env-admin", cfg.Admin.Username)
	assert.Equal(t, "9090", cfg.HTTP.Port)
}

func TestMustLoadPath_MissingFile(t *testing.T) {
	assert.Panics(t, func() {
		config.MustLoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestLoadClient(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := writeConfig(t, "server_url: http://shop.local\ntimeout: 3s\n")

		cfg, err := config.LoadClient(path)
		require.NoError(t, err)
		assert.Equal(t, "http://shop.local", cfg.ServerURL)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.Equal(t, "floral.db", cfg.LocalDB)
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("FLORAL_CONFIG", "")
		t.Setenv("FLORAL_SERVER_URL", "http://env.local")

		cfg, err := config.LoadClient("")
		require.NoError(t, err)
		assert.Equal(t, "http://env.local", cfg.ServerURL)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadClient(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
