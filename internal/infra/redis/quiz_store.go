package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quiz-share/internal/domain"
)

// QuizStore keeps quiz documents in Redis.
// Layout:
//
//	HSET  quiz:{id}             nickname password questions created_at
//	RPUSH quiz:{id}:results     {result json}
//	SADD  quiz:{id}:submissions {result id}
//	ZADD  quizzes               {seq} {id}
//	SADD  quiz:nickname:{nick}  {id}
type QuizStore struct {
	client *redis.Client
	clock  func() time.Time
}

const (
	indexKey    = "quizzes"
	sequenceKey = "quizzes:seq"
)

// appendScript appends a result once per result id, only while the quiz exists.
var appendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('SADD', KEYS[3], ARGV[1]) == 0 then
	return 0
end
redis.call('RPUSH', KEYS[2], ARGV[2])
return 1
`)

func NewQuizStore(client *redis.Client) *QuizStore {
	return &QuizStore{client: client, clock: time.Now}
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) (string, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return "", fmt.Errorf("marshal questions: %w", err)
	}
	seq, err := s.client.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}

	id := uuid.NewString()
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, quizKey(id), map[string]interface{}{
		"nickname":   quiz.Nickname,
		"password":   quiz.Password,
		"questions":  string(questions),
		"created_at": s.clock().UTC().Format(time.RFC3339Nano),
	})
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(seq), Member: id})
	pipe.SAdd(ctx, nicknameKey(quiz.Nickname), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}
	return id, nil
}

func (s *QuizStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if !validID(quizID) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quizzes, err := s.load(ctx, []string{quizID})
	if err != nil {
		return domain.Quiz{}, err
	}
	if len(quizzes) == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quizzes[0], nil
}

func (s *QuizStore) FindByNickname(ctx context.Context, nickname string) ([]domain.Quiz, error) {
	ids, err := s.client.SMembers(ctx, nicknameKey(nickname)).Result()
	if err != nil {
		return nil, fmt.Errorf("find by nickname: %w", err)
	}
	return s.load(ctx, ids)
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return s.load(ctx, ids)
}

func (s *QuizStore) AppendResult(ctx context.Context, quizID string, result domain.Result) error {
	if !validID(quizID) {
		return domain.ErrQuizNotFound
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	keys := []string{quizKey(quizID), resultsKey(quizID), submissionsKey(quizID)}
	status, err := appendScript.Run(ctx, s.client, keys, result.ID, string(raw)).Int()
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	if status < 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) DeleteQuiz(ctx context.Context, quizID string) error {
	if !validID(quizID) {
		return domain.ErrQuizNotFound
	}
	nickname, err := s.client.HGet(ctx, quizKey(quizID), "nickname").Result()
	if err == redis.Nil {
		return domain.ErrQuizNotFound
	}
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, quizKey(quizID), resultsKey(quizID), submissionsKey(quizID))
	pipe.ZRem(ctx, indexKey, quizID)
	pipe.SRem(ctx, nicknameKey(nickname), quizID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

// load reads the given quizzes in one transaction, skipping ids that no longer exist.
func (s *QuizStore) load(ctx context.Context, ids []string) ([]domain.Quiz, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.client.TxPipeline()
	hashes := make([]*redis.MapStringStringCmd, len(ids))
	results := make([]*redis.StringSliceCmd, len(ids))
	for i, id := range ids {
		hashes[i] = pipe.HGetAll(ctx, quizKey(id))
		results[i] = pipe.LRange(ctx, resultsKey(id), 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}

	quizzes := make([]domain.Quiz, 0, len(ids))
	for i, id := range ids {
		fields := hashes[i].Val()
		if len(fields) == 0 {
			continue
		}
		quiz, err := decodeQuiz(id, fields, results[i].Val())
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func decodeQuiz(id string, fields map[string]string, rawResults []string) (domain.Quiz, error) {
	quiz := domain.Quiz{
		ID:       id,
		Nickname: fields["nickname"],
		Password: fields["password"],
	}
	if err := json.Unmarshal([]byte(fields["questions"]), &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions of %s: %w", id, err)
	}
	if createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		quiz.CreatedAt = createdAt
	}
	for _, raw := range rawResults {
		var result domain.Result
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return domain.Quiz{}, fmt.Errorf("unmarshal result of %s: %w", id, err)
		}
		quiz.Results = append(quiz.Results, result)
	}
	return quiz, nil
}

// validID keeps caller-supplied ids from addressing non-hash keys such as
// quiz:{id}:results or quiz:nickname:{nick}. Store ids are always uuids.
func validID(quizID string) bool {
	_, err := uuid.Parse(quizID)
	return err == nil
}

func quizKey(quizID string) string {
	return "quiz:" + quizID
}

func resultsKey(quizID string) string {
	return "quiz:" + quizID + ":results"
}

func submissionsKey(quizID string) string {
	return "quiz:" + quizID + ":submissions"
}

func nicknameKey(nickname string) string {
	return "quiz:nickname:" + nickname
}
