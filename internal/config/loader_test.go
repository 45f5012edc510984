package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temp dir and returns the docref config dir.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "docref")
	require.NoError(t, os.MkdirAll(dir, 0700))
	return dir
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	dir := setupTestHome(t)

	cfg, err := LoadWithFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Server, cfg.Server)
	assert.Equal(t, want.Embedding, cfg.Embedding)
	assert.Equal(t, want.Compression, cfg.Compression)
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `server:
  http_port: 9300
embedding:
  provider: tei
  base_url: http://tei:8080
  model: BAAI/bge-small-en-v1.5
  timeout: 5s
resolver:
  html_fallback: false
compression:
  min_content_length: 10
`, 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9300, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host, "unset fields keep defaults")
	assert.Equal(t, "tei", cfg.Embedding.Provider)
	assert.Equal(t, "http://tei:8080", cfg.Embedding.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Timeout.Duration())
	assert.False(t, cfg.Resolver.HTMLFallback)
	assert.Equal(t, 10, cfg.Compression.MinContentLength)
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `embedding:
  model: from-file
`, 0600)

	t.Setenv("DOCREF_EMBEDDING_MODEL", "from-env")
	t.Setenv("DOCREF_EMBEDDING_CONCURRENCY", "8")
	t.Setenv("DOCREF_RESOLVER_HTML_FALLBACK", "false")
	t.Setenv("DOCREF_EMBEDDING_API_KEY", "sk-test")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Embedding.Model)
	assert.Equal(t, 8, cfg.Embedding.Concurrency)
	assert.False(t, cfg.Resolver.HTMLFallback)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey.Value())
}

func TestLoadWithFile_InvalidValuesRejected(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `embedding:
  provider: word2vec
`, 0600)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadWithFile_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "server:\n  http_port: 9300\n", 0644)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoadWithFile_PathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)
	outside := filepath.Join(t.TempDir(), "config.yaml")

	_, err := LoadWithFile(outside)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path validation failed")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"DOCREF_EMBEDDING_BASE_URL":        "embedding.base_url",
		"DOCREF_SERVER_HTTP_PORT":          "server.http_port",
		"DOCREF_COMPRESSION_EMIT_TRACE":    "compression.emit_trace",
		"DOCREF_TELEMETRY_SERVICE_VERSION": "telemetry.service_version",
		"DOCREF_DEBUG":                     "debug",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}
