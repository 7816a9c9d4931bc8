package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"quiz-share/internal/metrics"
)

// AccessLog logs one line per request.
func AccessLog(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metrics.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.Status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
