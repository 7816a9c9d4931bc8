package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCounters(t *testing.T) {
	m := New()
	m.QuizCreated()
	m.ResultSubmitted(80)
	m.ResultSubmitted(100)
	m.QuizDeleted("admin")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.created))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.submitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deleted.WithLabelValues("admin")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.deleted.WithLabelValues("owner")))
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	m := New()
	h := m.Middleware("GET /api/quizzes/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/quizzes/x", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "GET /api/quizzes/{id}", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}
