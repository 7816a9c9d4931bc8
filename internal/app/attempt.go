package app

import (
	"context"
	"fmt"
	"sync"

	"quiz-share/internal/domain"
)

// Attempt is one respondent's in-progress answer sheet for a quiz.
// It carries a fixed submission ID so a retried submit appends at most once.
type Attempt struct {
	service    *QuizService
	quizID     string
	respondent string
	id         string

	mu        sync.Mutex
	answers   []*bool
	submitted bool
	result    domain.Result
}

// StartAttempt opens the quiz and returns an empty answer sheet for it.
func (s *QuizService) StartAttempt(ctx context.Context, quizID, respondent string) (*Attempt, domain.QuizSheet, error) {
	sheet, err := s.OpenQuiz(ctx, quizID)
	if err != nil {
		return nil, domain.QuizSheet{}, err
	}
	return &Attempt{
		service:    s,
		quizID:     quizID,
		respondent: respondent,
		id:         s.newID(),
		answers:    make([]*bool, len(sheet.Questions)),
	}, sheet, nil
}

// ID is the submission ID used when the attempt is submitted.
func (a *Attempt) ID() string { return a.id }

// SetAnswer records (or clears, with nil) the answer at index and returns the sheet.
func (a *Attempt) SetAnswer(index int, answer *bool) ([]*bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return nil, domain.ErrAlreadySubmitted
	}
	if index < 0 || index >= len(a.answers) {
		return nil, fmt.Errorf("%w: question index %d out of range", domain.ErrInvalidSubmission, index)
	}
	if answer != nil {
		v := *answer
		answer = &v
	}
	a.answers[index] = answer
	return a.snapshotLocked(), nil
}

// Answers returns a copy of the current answer sheet.
func (a *Attempt) Answers() []*bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Submit grades and records the attempt. A failed submit may be retried;
// a successful one cannot be repeated.
func (a *Attempt) Submit(ctx context.Context) (domain.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return a.result, domain.ErrAlreadySubmitted
	}
	result, err := a.service.SubmitAnswers(ctx, a.quizID, domain.Submission{
		ID:             a.id,
		RespondentName: a.respondent,
		Answers:        a.snapshotLocked(),
	})
	if err != nil {
		return domain.Result{}, err
	}
	a.submitted = true
	a.result = result
	return result, nil
}

func (a *Attempt) snapshotLocked() []*bool {
	out := make([]*bool, len(a.answers))
	copy(out, a.answers)
	return out
}
