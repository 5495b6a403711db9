package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "firemerge-sessions.db", cfg.Session.DBPath)
	assert.Empty(t, cfg.Firefly.BaseURL)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("FIREFLY_BASE_URL", "")
	t.Setenv("FIREFLY_TOKEN", "")

	path := filepath.Join(t.TempDir(), "firemerge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen: ":9090"
firefly:
  base_url: https://firefly.example.com
  token: tok
session:
  db_path: /tmp/sessions.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "https://firefly.example.com", cfg.Firefly.BaseURL)
	assert.Equal(t, "tok", cfg.Firefly.Token)
	assert.Equal(t, "/tmp/sessions.db", cfg.Session.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Listen)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FIREFLY_BASE_URL", "https://env.example.com")
	t.Setenv("FIREFLY_TOKEN", "env-token")
	t.Setenv("FIREMERGE_LISTEN", ":7070")

	path := filepath.Join(t.TempDir(), "firemerge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
firefly:
  base_url: https://file.example.com
  token: file-token
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Firefly.BaseURL)
	assert.Equal(t, "env-token", cfg.Firefly.Token)
	assert.Equal(t, ":7070", cfg.Server.Listen)
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.Validate())
	cfg.Firefly.BaseURL = "https://firefly.example.com"
	require.Error(t, cfg.Validate())
	cfg.Firefly.Token = "tok"
	assert.NoError(t, cfg.Validate())
}
