package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-share/internal/domain"
)

const (
	deletePathOwner = "owner"
	deletePathAdmin = "admin"
)

// QuizService contains the quiz use cases: authoring, taking, listing and deletion.
type QuizService struct {
	store   QuizStore
	cache   ContentCache
	gate    *AdminGate
	timeout time.Duration
	now     func() time.Time
	newID   func() string
	metrics Recorder
	log     *zap.Logger
}

// Option configures a QuizService.
type Option func(*QuizService)

// WithContentCache serves grading reads from a content cache.
func WithContentCache(cache ContentCache) Option {
	return func(s *QuizService) { s.cache = cache }
}

// WithStoreTimeout bounds every store call. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *QuizService) { s.timeout = d }
}

func WithRecorder(r Recorder) Option {
	return func(s *QuizService) { s.metrics = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *QuizService) { s.log = l }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(store QuizStore, gate *AdminGate, opts ...Option) *QuizService {
	s := &QuizService{
		store:   store,
		gate:    gate,
		timeout: 5 * time.Second,
		now:     time.Now,
		newID:   uuid.NewString,
		metrics: nopRecorder{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateQuiz validates the draft, checks the nickname and persists a new quiz.
// The nickname check and the create are not atomic.
func (s *QuizService) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (string, error) {
	if err := ValidateDraft(draft); err != nil {
		return "", err
	}
	nickname := NormalizeNickname(draft.Nickname)

	available, err := s.nicknameAvailable(ctx, nickname)
	if err != nil {
		return "", err
	}
	if !available {
		return "", fmt.Errorf("%w: %q", domain.ErrDuplicateNickname, nickname)
	}

	quiz := domain.Quiz{
		Nickname:  nickname,
		Password:  draft.Password,
		Questions: questionsFromDraft(draft.Questions),
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	id, err := s.store.CreateQuiz(storeCtx, quiz)
	if err != nil {
		return "", domain.Unavailable("create quiz", err)
	}

	s.metrics.QuizCreated()
	s.log.Info("quiz created", zap.String("quizId", id), zap.String("nickname", nickname))
	return id, nil
}

// NicknameAvailable reports whether no quiz uses the nickname (case-insensitive).
func (s *QuizService) NicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	normalized := NormalizeNickname(nickname)
	if normalized == "" {
		return false, &domain.ValidationError{Fields: map[string]string{"nickname": "required"}}
	}
	return s.nicknameAvailable(ctx, normalized)
}

func (s *QuizService) nicknameAvailable(ctx context.Context, normalized string) (bool, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	matches, err := s.store.FindByNickname(storeCtx, normalized)
	if err != nil {
		return false, domain.Unavailable("find by nickname", err)
	}
	return len(matches) == 0, nil
}

// OpenQuiz returns the respondent view of a quiz.
func (s *QuizService) OpenQuiz(ctx context.Context, quizID string) (domain.QuizSheet, error) {
	quiz, err := s.loadContent(ctx, quizID)
	if err != nil {
		return domain.QuizSheet{}, err
	}
	return quiz.Sheet(), nil
}

// SubmitAnswers grades a submission and appends the result to the quiz.
// Resubmitting the same submission ID does not add a second result.
func (s *QuizService) SubmitAnswers(ctx context.Context, quizID string, submission domain.Submission) (domain.Result, error) {
	if len(submission.Answers) > domain.QuestionCount {
		return domain.Result{}, fmt.Errorf("%w: %d answers for %d questions",
			domain.ErrInvalidSubmission, len(submission.Answers), domain.QuestionCount)
	}

	quiz, err := s.loadContent(ctx, quizID)
	if err != nil {
		return domain.Result{}, err
	}

	result := domain.Result{
		ID:             strings.TrimSpace(submission.ID),
		RespondentName: strings.TrimSpace(submission.RespondentName),
		Score:          Grade(quiz.Questions, submission.Answers),
		SubmittedAt:    s.now().UTC(),
	}
	if result.ID == "" {
		result.ID = s.newID()
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.AppendResult(storeCtx, quizID, result); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			s.invalidate(quizID)
		}
		return domain.Result{}, domain.Unavailable("append result", err)
	}

	s.metrics.ResultSubmitted(result.Score)
	s.log.Info("result submitted",
		zap.String("quizId", quizID),
		zap.String("resultId", result.ID),
		zap.Int("score", result.Score),
	)
	return result, nil
}

// BrowseQuizzes lists all quizzes filtered by nickname, one page at a time.
func (s *QuizService) BrowseQuizzes(ctx context.Context, state BrowseState) (BrowsePage, error) {
	return s.browse(ctx, state, false)
}

// ListResults pages through one quiz's results in submission order.
func (s *QuizService) ListResults(ctx context.Context, quizID string, page int) (ResultsPage, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return ResultsPage{}, err
	}
	return ResultsPage{
		QuizID:   quiz.ID,
		Nickname: quiz.Nickname,
		Page:     Paginate(quiz.Results, page, domain.PageSize),
	}, nil
}

// DeleteQuiz removes a quiz when the owner password matches.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID, password string) error {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.Password != password {
		s.log.Warn("quiz delete rejected", zap.String("quizId", quizID))
		return domain.ErrWrongPassword
	}
	return s.deleteQuiz(ctx, quizID, deletePathOwner)
}

// UnlockAdmin checks the shared admin secret.
func (s *QuizService) UnlockAdmin(secret string) error {
	if err := s.gate.Unlock(secret); err != nil {
		s.log.Warn("admin unlock rejected")
		return err
	}
	return nil
}

// AdminBrowse is BrowseQuizzes behind the admin gate, with delete capability on every entry.
func (s *QuizService) AdminBrowse(ctx context.Context, secret string, state BrowseState) (BrowsePage, error) {
	if err := s.gate.Unlock(secret); err != nil {
		return BrowsePage{}, err
	}
	return s.browse(ctx, state, true)
}

// AdminDelete removes a quiz without the owner password.
func (s *QuizService) AdminDelete(ctx context.Context, secret, quizID string) error {
	if err := s.gate.Unlock(secret); err != nil {
		return err
	}
	return s.deleteQuiz(ctx, quizID, deletePathAdmin)
}

func (s *QuizService) browse(ctx context.Context, state BrowseState, deletable bool) (BrowsePage, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	quizzes, err := s.store.ListQuizzes(storeCtx)
	if err != nil {
		return BrowsePage{}, domain.Unavailable("list quizzes", err)
	}

	filtered := FilterByNickname(quizzes, state.Filter)
	summaries := make([]domain.QuizSummary, len(filtered))
	for i, quiz := range filtered {
		summaries[i] = quiz.Summary()
		summaries[i].Deletable = deletable
	}
	return BrowsePage{
		Filter: state.Filter,
		Page:   Paginate(summaries, state.Page, domain.PageSize),
	}, nil
}

func (s *QuizService) deleteQuiz(ctx context.Context, quizID, path string) error {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.DeleteQuiz(storeCtx, quizID); err != nil {
		return domain.Unavailable("delete quiz", err)
	}
	s.invalidate(quizID)
	s.metrics.QuizDeleted(path)
	s.log.Info("quiz deleted", zap.String("quizId", quizID), zap.String("path", path))
	return nil
}

// getQuiz always reads the full document from the store.
func (s *QuizService) getQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	quiz, err := s.store.GetQuiz(storeCtx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.Unavailable("get quiz", err)
	}
	return quiz, nil
}

// loadContent reads quiz content, through the cache when one is configured.
func (s *QuizService) loadContent(ctx context.Context, quizID string) (domain.Quiz, error) {
	if s.cache == nil {
		return s.getQuiz(ctx, quizID)
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	quiz, err := s.cache.GetQuiz(storeCtx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.Unavailable("get quiz", err)
	}
	return quiz, nil
}

func (s *QuizService) invalidate(quizID string) {
	if s.cache != nil {
		s.cache.Invalidate(quizID)
	}
}

func (s *QuizService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
