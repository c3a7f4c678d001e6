package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8100", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http://127.0.0.1:8888", cfg.CoreURL)
	assert.Empty(t, cfg.CoreCmd)
	assert.Equal(t, 60*time.Second, cfg.CoreStartTimeout)
	assert.Equal(t, 120*time.Second, cfg.CoreRequestTimeout)
	assert.Equal(t, 256, cfg.MetadataCacheSize)
	assert.Equal(t, "workbench-session.db", cfg.SessionDBPath)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, 20, cfg.SessionRetain)
	assert.Empty(t, cfg.DefaultVariant)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("CORE_URL", "http://127.0.0.1:9999")
	t.Setenv("CORE_CMD", "python3 -m core.api")
	t.Setenv("CORE_START_TIMEOUT", "10s")
	t.Setenv("CORE_REQUEST_TIMEOUT", "5m")
	t.Setenv("METADATA_CACHE_SIZE", "32")
	t.Setenv("SESSION_DB", "/tmp/session.db")
	t.Setenv("AUTOSAVE_INTERVAL", "5s")
	t.Setenv("SESSION_RETAIN", "3")
	t.Setenv("WORKFLOW_VARIANT", "C")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.CoreURL)
	assert.Equal(t, "python3 -m core.api", cfg.CoreCmd)
	assert.Equal(t, 10*time.Second, cfg.CoreStartTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CoreRequestTimeout)
	assert.Equal(t, 32, cfg.MetadataCacheSize)
	assert.Equal(t, "/tmp/session.db", cfg.SessionDBPath)
	assert.Equal(t, 5*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, 3, cfg.SessionRetain)
	assert.Equal(t, "C", cfg.DefaultVariant)
}

func TestLoad_FileOverlayWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"httpAddr: \":7000\"\nlogFormat: text\ncoreURL: http://filehost:8888\nmetadataCacheSize: 64\n",
	), 0o644))

	t.Setenv("WORKBENCH_CONFIG", path)
	t.Setenv("CORE_URL", "http://envhost:8888")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTPAddr, "file value applies when env is unset")
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 64, cfg.MetadataCacheSize)
	assert.Equal(t, "http://envhost:8888", cfg.CoreURL, "env wins over file")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("httpAddr: [unclosed"), 0o644))

	t.Setenv("WORKBENCH_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad start timeout", "CORE_START_TIMEOUT", "soon"},
		{"negative autosave interval", "AUTOSAVE_INTERVAL", "-5s"},
		{"bad cache size", "METADATA_CACHE_SIZE", "lots"},
		{"zero cache size", "METADATA_CACHE_SIZE", "0"},
		{"unknown variant", "WORKFLOW_VARIANT", "D"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
