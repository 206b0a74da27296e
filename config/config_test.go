// ABOUTME: Tests for configuration layering
// ABOUTME: Verifies defaults, file overrides, and environment precedence

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/commtrack/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.json"), true)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, session.DefaultDir(), cfg.SessionDir)
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "typo.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commtrack", ConfigFileName)
	file := DefaultConfig()
	file.Port = 9090
	file.SeedFile = "/tmp/seed.yaml"
	require.NoError(t, file.Save(path))

	t.Setenv("COMMTRACK_PORT", "7070")
	t.Setenv("COMMTRACK_ALLOWED_ORIGINS", "http://localhost:3000, http://example.com")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port, "environment wins over file")
	assert.Equal(t, "/tmp/seed.yaml", cfg.SeedFile)
	assert.Equal(t, []string{"http://localhost:3000", "http://example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Setenv("COMMTRACK_PORT", "eighty")
	_, err := load(filepath.Join(t.TempDir(), "missing.json"), true)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "chatty"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Port = 0
	assert.Error(t, cfg.Validate())
}
