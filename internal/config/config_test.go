package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/weiawesome/ward-rooms/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(pkgconfig.EnvConfigFile, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "/uploads", cfg.Server.StaticPath)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "rooms", cfg.Cache.Prefix)
	assert.Equal(t, 5, cfg.Image.MaxCount)
	assert.Equal(t, 800, cfg.Image.MaxWidth)
	assert.Equal(t, 600, cfg.Image.MaxHeight)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "none", cfg.PubSub.Driver)
	assert.Equal(t, 10*time.Second, cfg.Directory.Timeout)
	assert.Contains(t, cfg.Options.RoomCategories, "ICU")
	assert.Equal(t, "room-service", cfg.Log.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(pkgconfig.EnvConfigFile, "")
	t.Setenv("PORT", "6001")
	t.Setenv("APP_ENV", ModeDevelopment)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("S3_BUCKET", "ward-images")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6001, cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "ward-images", cfg.Storage.S3.Bucket)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
image:
  max_count: 3
options:
  room_categories: ["Ward"]
`), 0o600))
	t.Setenv(pkgconfig.EnvConfigFile, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Image.MaxCount)
	assert.Equal(t, []string{"Ward"}, cfg.Options.RoomCategories)
	assert.Equal(t, 800, cfg.Image.MaxWidth)
}
