package app

import (
	"context"

	"quiz-share/internal/domain"
)

// QuizStore abstracts the document store holding quiz documents (in-memory, Redis, Postgres).
// GetQuiz and AppendResult return domain.ErrQuizNotFound for unknown ids.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (string, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	FindByNickname(ctx context.Context, nickname string) ([]domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	// AppendResult appends atomically and at most once per result ID.
	AppendResult(ctx context.Context, quizID string, result domain.Result) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

// ContentCache serves immutable quiz content (everything but results).
type ContentCache interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Invalidate(quizID string)
}

// Recorder receives domain events for metrics.
type Recorder interface {
	QuizCreated()
	ResultSubmitted(score int)
	QuizDeleted(path string)
}

type nopRecorder struct{}

func (nopRecorder) QuizCreated()        {}
func (nopRecorder) ResultSubmitted(int) {}
func (nopRecorder) QuizDeleted(string)  {}
