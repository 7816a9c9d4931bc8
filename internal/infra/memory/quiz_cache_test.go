package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"quiz-share/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	store := NewQuizStore()
	id, _ := store.CreateQuiz(context.Background(), sampleQuiz("alice"))
	loader := &countingLoader{QuizLoader: store}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), id); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := cache.GetQuiz(context.Background(), id); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestQuizCacheDropsResults(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()
	id, _ := store.CreateQuiz(ctx, sampleQuiz("alice"))
	_ = store.AppendResult(ctx, id, domain.Result{ID: "r1", RespondentName: "Bob", Score: 40})

	cache := NewQuizCache(store, time.Minute)
	quiz, err := cache.GetQuiz(ctx, id)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if len(quiz.Results) != 0 {
		t.Fatalf("expected content without results, got %d", len(quiz.Results))
	}
}

func TestQuizCacheInvalidate(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()
	id, _ := store.CreateQuiz(ctx, sampleQuiz("alice"))
	loader := &countingLoader{QuizLoader: store}
	cache := NewQuizCache(loader, time.Minute)

	_, _ = cache.GetQuiz(ctx, id)
	cache.Invalidate(id)
	_, _ = cache.GetQuiz(ctx, id)
	if loader.count() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestQuizCacheExpires(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()
	id, _ := store.CreateQuiz(ctx, sampleQuiz("alice"))
	loader := &countingLoader{QuizLoader: store}
	cache := NewQuizCache(loader, time.Minute)

	now := time.Now()
	cache.clock = func() time.Time { return now }
	_, _ = cache.GetQuiz(ctx, id)

	now = now.Add(2 * time.Minute)
	_, _ = cache.GetQuiz(ctx, id)
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.count())
	}
}

func TestQuizCacheLoadSurvivesCallerCancel(t *testing.T) {
	store := NewQuizStore()
	id, _ := store.CreateQuiz(context.Background(), sampleQuiz("alice"))
	loader := &blockingLoader{QuizLoader: store, entered: make(chan struct{}), release: make(chan struct{})}
	cache := NewQuizCache(loader, time.Minute)

	first, cancelFirst := context.WithCancel(context.Background())
	errs := make(chan error, 2)
	go func() {
		_, err := cache.GetQuiz(first, id)
		errs <- err
	}()
	<-loader.entered

	go func() {
		_, err := cache.GetQuiz(context.Background(), id)
		errs <- err
	}()
	cancelFirst()
	time.Sleep(10 * time.Millisecond)
	close(loader.release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	if loader.ctxErr != nil {
		t.Fatalf("shared load saw canceled context: %v", loader.ctxErr)
	}
}

func TestQuizCacheLoadKeepsCallerDeadline(t *testing.T) {
	store := NewQuizStore()
	id, _ := store.CreateQuiz(context.Background(), sampleQuiz("alice"))
	loader := &deadlineLoader{QuizLoader: store}
	cache := NewQuizCache(loader, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	want, _ := ctx.Deadline()
	if _, err := cache.GetQuiz(ctx, id); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if !loader.hasDeadline || !loader.deadline.Equal(want) {
		t.Fatalf("expected load deadline %v, got %v (set=%v)", want, loader.deadline, loader.hasDeadline)
	}
}

// blockingLoader holds the load open until release is closed.
type blockingLoader struct {
	QuizLoader
	entered chan struct{}
	release chan struct{}
	ctxErr  error
}

func (l *blockingLoader) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	close(l.entered)
	<-l.release
	l.ctxErr = ctx.Err()
	return l.QuizLoader.GetQuiz(ctx, quizID)
}

type deadlineLoader struct {
	QuizLoader
	deadline    time.Time
	hasDeadline bool
}

func (l *deadlineLoader) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.deadline, l.hasDeadline = ctx.Deadline()
	return l.QuizLoader.GetQuiz(ctx, quizID)
}

type countingLoader struct {
	QuizLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.GetQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
