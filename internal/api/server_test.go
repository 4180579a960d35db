package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/designstore/internal/health"
	"github.com/p-blackswan/designstore/internal/metrics"
	"github.com/p-blackswan/designstore/internal/project"
	"github.com/p-blackswan/designstore/internal/requestid"
	"github.com/p-blackswan/designstore/internal/store"
)

type testEnv struct {
	app     *fiber.App
	baseDir string
	metrics *metrics.Metrics
}

// newTestEnv creates a Fiber app backed by a store in a temp dir.
func newTestEnv(t *testing.T, authMode, apiKey string) *testEnv {
	t.Helper()
	return newTestEnvAt(t, t.TempDir(), authMode, apiKey)
}

func newTestEnvAt(t *testing.T, baseDir, authMode, apiKey string) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	ds, err := store.New(store.Config{BaseDir: baseDir, CacheSize: 16}, logger)
	require.NoError(t, err)

	var n atomic.Int64
	m := metrics.New()
	designs := project.NewStore(ds, logger,
		project.WithMetrics(m),
		project.WithIDSource(func() string { return fmt.Sprintf("id-%d", n.Add(1)) }),
	)

	checker := health.NewChecker(logger)
	checker.Add("storage", health.FromFunc(ds.Probe))

	srv := NewServer(ServerConfig{
		ListenAddr:       ":0",
		AuthConfig:       AuthConfig{Mode: authMode, APIKey: apiKey},
		DefaultProjectID: "fallback",
	}, designs, checker, m, logger)

	return &testEnv{app: srv.App(), baseDir: baseDir, metrics: m}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServer_HealthzEndpoint(t *testing.T) {
	env := newTestEnv(t, "none", "")

	resp := env.do(t, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_ReadyzEndpoint(t *testing.T) {
	env := newTestEnv(t, "none", "")

	resp := env.do(t, "GET", "/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]any{"storage": map[string]any{"status": "ok"}}, body["checks"])
}

func TestServer_ReadyzEndpoint_StorageDown(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	env := newTestEnvAt(t, blocker, "none", "")

	resp := env.do(t, "GET", "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "not_ready", body["status"])
}

func TestServer_MetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, "none", "")

	env.do(t, "GET", "/api/v1/projects/demo/architecture", "")

	resp := env.do(t, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `designstore_ops_total{op="get_architecture",result="not_found"} 1`)
	assert.Contains(t, string(body), `designstore_http_requests_total{route="/api/v1/projects/:project/architecture",status="404"} 1`)
}

func TestServer_RequestIDEchoed(t *testing.T) {
	env := newTestEnv(t, "none", "")

	resp := env.do(t, "GET", "/healthz", "", requestid.Header, "trace-7")
	assert.Equal(t, "trace-7", resp.Header.Get(requestid.Header))

	resp = env.do(t, "GET", "/healthz", "")
	assert.NotEmpty(t, resp.Header.Get(requestid.Header))
}

func TestServer_UnknownRoute(t *testing.T) {
	env := newTestEnv(t, "none", "")

	resp := env.do(t, "GET", "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	problem := decode[ProblemDetail](t, resp)
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, "Not Found", problem.Title)
}
