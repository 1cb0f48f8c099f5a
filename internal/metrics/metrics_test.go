package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Exposition(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveExtraction("ok", 120*time.Millisecond)
	m.ObserveExtraction("ok", 80*time.Millisecond)
	m.ObserveExtraction("failed", time.Millisecond)
	m.ObserveRequest("POST", "/api/upload", 200, 150*time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `geometalens_extractions_total{outcome="ok"} 2`)
	assert.Contains(t, out, `geometalens_extractions_total{outcome="failed"} 1`)
	assert.Contains(t, out, `geometalens_extraction_duration_seconds_count 3`)
	assert.Contains(t, out, `geometalens_http_requests_total{method="POST",path="/api/upload",status="200"} 1`)
	assert.Contains(t, out, `geometalens_http_request_duration_seconds_count{method="POST",path="/api/upload"} 1`)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}
