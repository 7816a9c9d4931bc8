package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-share/internal/app"
	"quiz-share/internal/domain"
)

// WSHandler runs the take-quiz flow over a websocket: one connection is one attempt.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index  int   `json:"index"`
	Answer *bool `json:"answer"`
}

type quizPayload struct {
	domain.QuizSheet
	SubmissionID string `json:"submissionId"`
}

type answersPayload struct {
	Answers []*bool `json:"answers"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func wsError(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: errorMessage(err), Status: statusFor(err)}}
}

// ServeWS upgrades the request and serves one attempt at the quiz in the path.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	attempt, sheet, err := h.service.StartAttempt(r.Context(), quizID, name)
	if err != nil {
		_ = conn.WriteJSON(wsError(err))
		return
	}
	log := h.log.With(zap.String("quizId", quizID), zap.String("submissionId", attempt.ID()))
	log.Debug("attempt started")

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn("ws write error", zap.Error(err))
				_ = conn.Close()
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	emit(outboundMessage[any]{Type: "quiz", Payload: quizPayload{QuizSheet: sheet, SubmissionID: attempt.ID()}})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("ws read ended", zap.Error(err))
			}
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(wsError(fmt.Errorf("%w: %v", domain.ErrInvalidSubmission, err)))
				continue
			}
			answers, err := attempt.SetAnswer(payload.Index, payload.Answer)
			if err != nil {
				emit(wsError(err))
				continue
			}
			emit(outboundMessage[any]{Type: "answers", Payload: answersPayload{Answers: answers}})
		case "submit":
			result, err := attempt.Submit(r.Context())
			if err != nil {
				if statusFor(err) >= http.StatusInternalServerError {
					log.Error("ws submit failed", zap.Error(err))
				}
				emit(wsError(err))
				continue
			}
			emit(outboundMessage[any]{Type: "result", Payload: submitResultResponse{Result: result}})
		default:
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type", Status: http.StatusBadRequest}})
		}
	}

	close(send)
	<-writerDone
}
