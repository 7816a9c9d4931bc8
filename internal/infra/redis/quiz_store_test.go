package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-share/internal/domain"
)

func TestQuizStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateQuiz(ctx, sampleQuiz("alice"))
	require.NoError(t, err)
	assert.True(t, mr.Exists("quiz:"+id))

	quiz, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, quiz.ID)
	assert.Equal(t, "alice", quiz.Nickname)
	assert.Equal(t, "1234", quiz.Password)
	assert.Equal(t, sampleQuiz("alice").Questions, quiz.Questions)
	assert.False(t, quiz.CreatedAt.IsZero())
	assert.Empty(t, quiz.Results)
}

func TestQuizStoreGetMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.GetQuiz(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestQuizStoreIDsNeverAddressOtherKeys(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateQuiz(ctx, sampleQuiz("alice"))
	require.NoError(t, err)
	require.NoError(t, store.AppendResult(ctx, id, domain.Result{ID: "r1", RespondentName: "Bob", Score: 40}))
	before := mr.Keys()

	for _, crafted := range []string{
		"nickname:alice",
		id + ":results",
		id + ":submissions",
		"",
	} {
		_, err := store.GetQuiz(ctx, crafted)
		assert.ErrorIs(t, err, domain.ErrQuizNotFound, "get %q", crafted)

		err = store.AppendResult(ctx, crafted, domain.Result{ID: "r2", RespondentName: "Eve"})
		assert.ErrorIs(t, err, domain.ErrQuizNotFound, "append %q", crafted)

		err = store.DeleteQuiz(ctx, crafted)
		assert.ErrorIs(t, err, domain.ErrQuizNotFound, "delete %q", crafted)
	}

	assert.Equal(t, before, mr.Keys())
	quiz, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)
	assert.Len(t, quiz.Results, 1)
}

func TestQuizStoreFindByNicknameAndList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateQuiz(ctx, sampleQuiz("alice"))
	require.NoError(t, err)
	second, err := store.CreateQuiz(ctx, sampleQuiz("bob"))
	require.NoError(t, err)

	matches, err := store.FindByNickname(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, first, matches[0].ID)

	none, err := store.FindByNickname(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := store.ListQuizzes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].ID)
	assert.Equal(t, second, all[1].ID)
}

func TestQuizStoreAppendKeepsConcurrentResults(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id, err := store.CreateQuiz(ctx, sampleQuiz("alice"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, r := range []domain.Result{
		{ID: "r-bob", RespondentName: "Bob", Score: 80},
		{ID: "r-cara", RespondentName: "Cara", Score: 100},
	} {
		wg.Add(1)
		go func(r domain.Result) {
			defer wg.Done()
			assert.NoError(t, store.AppendResult(ctx, id, r))
		}(r)
	}
	wg.Wait()

	quiz, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)
	names := make([]string, 0, len(quiz.Results))
	for _, r := range quiz.Results {
		names = append(names, r.RespondentName)
	}
	assert.ElementsMatch(t, []string{"Bob", "Cara"}, names)
}

func TestQuizStoreAppendOncePerResultID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id, err := store.CreateQuiz(ctx, sampleQuiz("alice"))
	require.NoError(t, err)

	result := domain.Result{ID: "r1", RespondentName: "Bob", Score: 60}
	require.NoError(t, store.AppendResult(ctx, id, result))
	require.NoError(t, store.AppendResult(ctx, id, result))

	quiz, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)
	require.Len(t, quiz.Results, 1)
	assert.Equal(t, 60, quiz.Results[0].Score)
}

func TestQuizStoreAppendToMissingQuiz(t *testing.T) {
	store, mr := newTestStore(t)
	err := store.AppendResult(context.Background(), "gone", domain.Result{ID: "r1"})
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
	assert.False(t, mr.Exists("quiz:gone:submissions"))
}

func TestQuizStoreDeleteRemovesAllKeys(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	id, err := store.CreateQuiz(ctx, sampleQuiz("alice"))
	require.NoError(t, err)
	require.NoError(t, store.AppendResult(ctx, id, domain.Result{ID: "r1", RespondentName: "Bob", Score: 20}))

	require.NoError(t, store.DeleteQuiz(ctx, id))
	for _, key := range []string{"quiz:" + id, "quiz:" + id + ":results", "quiz:" + id + ":submissions", "quiz:nickname:alice"} {
		assert.False(t, mr.Exists(key), "key %s should be removed", key)
	}

	all, err := store.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.ErrorIs(t, store.DeleteQuiz(ctx, id), domain.ErrQuizNotFound)
}

func TestQuizStoreReportsBackendFailure(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.ListQuizzes(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrQuizNotFound)
}

func newTestStore(t *testing.T) (*QuizStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQuizStore(client), mr
}

func sampleQuiz(nickname string) domain.Quiz {
	questions := make([]domain.Question, domain.QuestionCount)
	for i := range questions {
		questions[i] = domain.Question{Question: fmt.Sprintf("statement %d", i+1), Answer: i%2 == 0}
	}
	return domain.Quiz{Nickname: nickname, Password: "1234", Questions: questions}
}
