package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portal-engine/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 12, cfg.SessionTTLHrs)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
port: 3000
db_path: /var/lib/portal/portal.db
allowed_origins:
  - https://portal.example.com
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "/var/lib/portal/portal.db", cfg.DBPath)
	assert.Equal(t, []string{"https://portal.example.com"}, cfg.AllowedOrigins)
	// Keys absent from the file keep their defaults
	assert.Equal(t, "./uploads", cfg.UploadsDir)
}

func TestLoad_InvalidPortRejected(t *testing.T) {
	path := writeConfig(t, "port: 99999\n")
	_, err := config.Load(path)
	assert.ErrorContains(t, err, "invalid port")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "port: [not a number\n")
	_, err := config.Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoad_NonPositiveTTLFallsBack(t *testing.T) {
	path := writeConfig(t, "session_ttl_hours: 0\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.SessionTTLHrs)
}
