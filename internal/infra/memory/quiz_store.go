package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-share/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore.
// Quizzes are listed in creation order; appends are serialized by the store lock.
type QuizStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	quizzes map[string]*domain.Quiz
	order   []string
	seen    map[string]map[string]struct{} // quizID -> result IDs
}

func NewQuizStore() *QuizStore {
	return &QuizStore{
		clock:   time.Now,
		quizzes: make(map[string]*domain.Quiz),
		seen:    make(map[string]map[string]struct{}),
	}
}

func (s *QuizStore) CreateQuiz(_ context.Context, quiz domain.Quiz) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneQuiz(quiz)
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.clock().UTC()
	stored.Results = nil

	s.quizzes[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	s.seen[stored.ID] = make(map[string]struct{})
	return stored.ID, nil
}

func (s *QuizStore) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(*quiz), nil
}

func (s *QuizStore) FindByNickname(_ context.Context, nickname string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []domain.Quiz
	for _, id := range s.order {
		if quiz := s.quizzes[id]; quiz.Nickname == nickname {
			matches = append(matches, cloneQuiz(*quiz))
		}
	}
	return matches, nil
}

func (s *QuizStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.order))
	for _, id := range s.order {
		quizzes = append(quizzes, cloneQuiz(*s.quizzes[id]))
	}
	return quizzes, nil
}

func (s *QuizStore) AppendResult(_ context.Context, quizID string, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	if _, dup := s.seen[quizID][result.ID]; dup {
		return nil
	}
	s.seen[quizID][result.ID] = struct{}{}
	quiz.Results = append(quiz.Results, result)
	return nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	delete(s.seen, quizID)
	for i, id := range s.order {
		if id == quizID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	out := q
	out.Questions = append([]domain.Question(nil), q.Questions...)
	out.Results = append([]domain.Result(nil), q.Results...)
	return out
}
