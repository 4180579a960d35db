package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const archPath = "/api/v1/projects/demo/architecture"

func TestAuth_NoAuth_Mode(t *testing.T) {
	env := newTestEnv(t, "none", "")

	resp := env.do(t, "GET", archPath, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuth_APIKey_Valid(t *testing.T) {
	env := newTestEnv(t, "api-key", "test-secret-key")

	resp := env.do(t, "GET", archPath, "", "Authorization", "Bearer test-secret-key")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuth_APIKey_Missing(t *testing.T) {
	env := newTestEnv(t, "api-key", "test-secret-key")

	resp := env.do(t, "GET", archPath, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	problem := decode[ProblemDetail](t, resp)
	assert.Equal(t, "missing_auth", problem.Type)
}

func TestAuth_APIKey_Invalid(t *testing.T) {
	env := newTestEnv(t, "api-key", "test-secret-key")

	resp := env.do(t, "GET", archPath, "", "Authorization", "Bearer wrong-key")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	problem := decode[ProblemDetail](t, resp)
	assert.Equal(t, "invalid_api_key", problem.Type)
}

func TestAuth_APIKey_InvalidScheme(t *testing.T) {
	env := newTestEnv(t, "api-key", "test-secret-key")

	resp := env.do(t, "GET", archPath, "", "Authorization", "Basic dGVzdDp0ZXN0")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	problem := decode[ProblemDetail](t, resp)
	assert.Equal(t, "invalid_auth_scheme", problem.Type)
}

func TestAuth_ProbeEndpoints_NoAuth(t *testing.T) {
	env := newTestEnv(t, "api-key", "test-secret-key")

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp := env.do(t, "GET", path, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, "path: %s", path)
	}
}
