package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	t.Setenv("DOCREF_SERVER_HTTP_PORT", "18084")
	t.Setenv("DOCREF_LOGGING_LEVEL", "error")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, "")
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get("http://localhost:18084/health")
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 3*time.Second, 50*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	// Compression is skipped for short content, so no embedding backend is
	// needed here.
	body := strings.NewReader(`{"content":"tiny","granularity":2,"compression_level":5}`)
	cr, err := http.Post("http://localhost:18084/api/v1/compress", "application/json", body)
	require.NoError(t, err)
	defer cr.Body.Close()
	assert.Equal(t, http.StatusOK, cr.StatusCode)

	metrics, err := http.Get("http://localhost:18084/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shutdown in time")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DOCREF_SERVER_HTTP_PORT", "70000")

	err := run(context.Background(), "")
	assert.ErrorContains(t, err, "configuration")
}
