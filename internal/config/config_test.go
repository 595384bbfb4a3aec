package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoadConfig(t *testing.T) {
	t.Run("Default Values", func(t *testing.T) {
		cfg, err := LoadConfigFrom(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
		assert.Equal(t, "sqlite://url_shortener.db", cfg.Database.URL)
		assert.Equal(t, 24*time.Hour, cfg.Alias.TTL)
		assert.Equal(t, 12, cfg.Alias.CodeLength)
		assert.Equal(t, 5, cfg.Alias.MaxAttempts)
		assert.Empty(t, cfg.Redis.Addr)
		assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
		assert.Equal(t, 5, cfg.Monitor.IntervalMinutes)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("Config File", func(t *testing.T) {
		dir := writeConfig(t, `
server:
  port: 9090
  base_url: https://sho.rt
alias:
  ttl: 2h
redis:
  addr: localhost:6379
`)
		cfg, err := LoadConfigFrom(dir)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "https://sho.rt", cfg.Server.BaseURL)
		assert.Equal(t, 2*time.Hour, cfg.Alias.TTL)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 12, cfg.Alias.CodeLength)
	})

	t.Run("Environment Variables", func(t *testing.T) {
		dir := writeConfig(t, "server:\n  port: 9090\n")
		t.Setenv("SERVER_PORT", "9999")
		t.Setenv("DATABASE_URL", "sqlite://:memory:")
		t.Setenv("ALIAS_TTL", "30m")

		cfg, err := LoadConfigFrom(dir)
		require.NoError(t, err)
		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, "sqlite://:memory:", cfg.Database.URL)
		assert.Equal(t, 30*time.Minute, cfg.Alias.TTL)
	})

	t.Run("Malformed File", func(t *testing.T) {
		dir := writeConfig(t, "server: [unterminated\n")
		_, err := LoadConfigFrom(dir)
		var loadErr customerrors.ErrConfigLoad
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, dir, loadErr.Path)
	})

	t.Run("Invalid Values", func(t *testing.T) {
		cases := map[string]string{
			"port":         "server:\n  port: 0\n",
			"ttl":          "alias:\n  ttl: -1h\n",
			"code length":  "alias:\n  code_length: 40\n",
			"max attempts": "alias:\n  max_attempts: 0\n",
			"monitor":      "monitor:\n  interval_minutes: -1\n",
		}
		for name, content := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := LoadConfigFrom(writeConfig(t, content))
				var loadErr customerrors.ErrConfigLoad
				assert.ErrorAs(t, err, &loadErr)
			})
		}
	})
}
