package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-share/internal/domain"
)

// QuizStore keeps one row per quiz; questions and results are JSONB arrays.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

const selectQuiz = `SELECT id::text, nickname, password, questions, results, created_at FROM quizzes`

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) (string, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return "", fmt.Errorf("marshal questions: %w", err)
	}
	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO quizzes (nickname, password, questions) VALUES ($1, $2, $3::jsonb) RETURNING id::text`,
		quiz.Nickname, quiz.Password, string(questions),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}
	return id, nil
}

func (s *QuizStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if _, err := uuid.Parse(quizID); err != nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz, err := scanQuiz(s.pool.QueryRow(ctx, selectQuiz+` WHERE id = $1`, quizID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizStore) FindByNickname(ctx context.Context, nickname string) ([]domain.Quiz, error) {
	return s.query(ctx, "find by nickname", selectQuiz+` WHERE nickname = $1 ORDER BY created_at, id`, nickname)
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.query(ctx, "list quizzes", selectQuiz+` ORDER BY created_at, id`)
}

// AppendResult is a single row-locked UPDATE, so concurrent appends serialize
// instead of overwriting each other. The containment check skips a result id
// that is already present.
func (s *QuizStore) AppendResult(ctx context.Context, quizID string, result domain.Result) error {
	if _, err := uuid.Parse(quizID); err != nil {
		return domain.ErrQuizNotFound
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE quizzes
		SET results = results || jsonb_build_array($2::jsonb)
		WHERE id = $1
		  AND NOT results @> jsonb_build_array(jsonb_build_object('id', $3::text))`,
		quizID, string(raw), result.ID,
	)
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE id = $1)`, quizID).Scan(&exists); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	if !exists {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) DeleteQuiz(ctx context.Context, quizID string) error {
	if _, err := uuid.Parse(quizID); err != nil {
		return domain.ErrQuizNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) query(ctx context.Context, op, sql string, args ...interface{}) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return quizzes, nil
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		quiz         domain.Quiz
		rawQuestions []byte
		rawResults   []byte
		createdAt    time.Time
	)
	if err := row.Scan(&quiz.ID, &quiz.Nickname, &quiz.Password, &rawQuestions, &rawResults, &createdAt); err != nil {
		return domain.Quiz{}, err
	}
	if err := json.Unmarshal(rawQuestions, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(rawResults, &quiz.Results); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal results: %w", err)
	}
	quiz.CreatedAt = createdAt.UTC()
	return quiz, nil
}
