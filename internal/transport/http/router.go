package http

import (
	"net/http"

	"go.uber.org/zap"

	"quiz-share/internal/app"
	"quiz-share/internal/metrics"
)

// NewRouter wires the JSON API, the websocket take flow, health and metrics.
func NewRouter(service *app.QuizService, m *metrics.Metrics, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	api := NewAPI(service, log)
	ws := NewWSHandler(service, log)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, m.Middleware(pattern, h))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", m.Handler())

	handle("GET /api/quizzes", api.HandleBrowse)
	handle("POST /api/quizzes", api.HandleCreateQuiz)
	handle("GET /api/nicknames/{nickname}", api.HandleNickname)
	handle("GET /api/quizzes/{id}", api.HandleGetQuiz)
	handle("DELETE /api/quizzes/{id}", api.HandleDeleteQuiz)
	handle("POST /api/quizzes/{id}/results", api.HandleSubmitResult)
	handle("GET /api/quizzes/{id}/results", api.HandleListResults)
	handle("POST /api/admin/session", api.HandleAdminSession)
	handle("GET /api/admin/quizzes", api.HandleAdminBrowse)
	handle("DELETE /api/admin/quizzes/{id}", api.HandleAdminDelete)
	handle("GET /ws/quizzes/{id}", ws.ServeWS)

	return AccessLog(log, mux)
}
