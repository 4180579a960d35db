package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_New(t *testing.T) {
	m := New()
	assert.NotNil(t, m.OpsTotal)
	assert.NotNil(t, m.OpDuration)
	assert.NotNil(t, m.RequestsTotal)
	assert.NotNil(t, m.Gatherer())
}

func TestMetrics_RecordOp(t *testing.T) {
	m := New()
	m.RecordOp("upsert_module", ResultOK, 2*time.Millisecond)
	m.RecordOp("upsert_module", ResultOK, time.Millisecond)
	m.RecordOp("delete_module", ResultNotFound, time.Millisecond)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `designstore_ops_total{op="upsert_module",result="ok"} 2`)
	assert.Contains(t, body, `designstore_ops_total{op="delete_module",result="not_found"} 1`)
	assert.Contains(t, body, `designstore_op_duration_seconds_count{op="upsert_module"} 2`)
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest("/api/v1/projects/:project/architecture", "200")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `designstore_http_requests_total{route="/api/v1/projects/:project/architecture",status="200"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOp("get_architecture", ResultOK, time.Millisecond)
		m.RecordRequest("/healthz", "200")
	})
}

func getMetricsBody(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}
