package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truenumber/gameservice/internal/config"
)

const testConfig = `
api:
  port: ":9090"
database:
  driver: "sqlite"
  path: "test.db"
settlement:
  compensation_retries: 5
outbox:
  interval: 5s
`

func chdirWithConfig(t *testing.T, content string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yml"), []byte(content), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad(t *testing.T) {
	t.Run("reads file values and fills defaults", func(t *testing.T) {
		chdirWithConfig(t, testConfig)

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.API.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "test.db", cfg.Database.Path)
		assert.Equal(t, 5, cfg.Settlement.CompensationRetries)
		assert.Equal(t, 1, cfg.Settlement.GeneratorRetries)
		assert.Equal(t, 3, cfg.Settlement.RecentGames)
		assert.Equal(t, 5*time.Second, cfg.Outbox.Interval)
		assert.Equal(t, "game.settled", cfg.Outbox.Queue)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		chdirWithConfig(t, testConfig)
		t.Setenv("API_PORT", ":7070")

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.Equal(t, ":7070", cfg.API.Port)
	})

	t.Run("returns error when file is missing", func(t *testing.T) {
		dir := t.TempDir()
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		_, err = config.Load()

		assert.Error(t, err)
	})
}
