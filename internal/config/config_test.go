package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niklauzi/lyte/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "data/lyte.db", cfg.Database.Path)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "static", cfg.Uploads.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Admins)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := config.Load("does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
log:
  level: debug
  format: console
admins:
  - username: root
    password: supersecret
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	require.Len(t, cfg.Admins, 1)
	assert.Equal(t, "root", cfg.Admins[0].Username)

	// Untouched keys keep their defaults.
	assert.Equal(t, "data/lyte.db", cfg.Database.Path)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	t.Setenv("LYTE_SERVER__ADDR", ":7070")
	t.Setenv("LYTE_DATABASE__PATH", "/tmp/other.db")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad log level", "log:\n  level: loud\n"},
		{"short admin password", "admins:\n  - username: root\n    password: short\n"},
		{"zero login window", "server:\n  login_window: 0s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}
