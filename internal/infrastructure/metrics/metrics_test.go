package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "GET /api/v1/stats", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "GET /api/v1/stats", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "GET /api/v1/stats", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))

	m.ObserveMutation("set_flag", true, nil)
	m.ObserveMutation("set_flag", false, nil)
	m.ObserveMutation("set_flag", false, errors.New("disk full"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("set_flag", OutcomeChanged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("set_flag", OutcomeUnchanged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("set_flag", OutcomeFailed)))

	m.ObserveJob("daily_report", false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("daily_report", "failure")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveJob("daily_report", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `halaqa_job_runs_total{job="daily_report",result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
