// Package metrics exposes Prometheus metrics for the HTTP layer and quiz events.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests and multiple servers do not collide.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	created         prometheus.Counter
	submitted       prometheus.Counter
	scores          prometheus.Histogram
	deleted         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_created_total",
			Help: "Quizzes created",
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_results_submitted_total",
			Help: "Graded submissions appended to quizzes",
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_result_score",
			Help:    "Distribution of submission scores",
			Buckets: []float64{0, 20, 40, 60, 80, 100},
		}),
		deleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_deleted_total",
				Help: "Quizzes deleted, by path (owner or admin)",
			},
			[]string{"path"},
		),
	}
	m.registry.MustRegister(m.requests, m.requestDuration, m.created, m.submitted, m.scores, m.deleted)
	return m
}

func (m *Metrics) QuizCreated() { m.created.Inc() }

func (m *Metrics) ResultSubmitted(score int) {
	m.submitted.Inc()
	m.scores.Observe(float64(score))
}

func (m *Metrics) QuizDeleted(path string) { m.deleted.WithLabelValues(path).Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency. endpoint names the route, not the raw path.
func (m *Metrics) Middleware(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.requests.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.Status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// StatusRecorder captures the status code written by a handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *StatusRecorder) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack passes through to the underlying writer so websocket upgrades work behind the middleware.
func (r *StatusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.Status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *StatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
