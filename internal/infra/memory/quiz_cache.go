package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-share/internal/domain"
)

// QuizLoader fetches a quiz document from the backing store.
type QuizLoader interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCache caches quiz content with TTL to avoid a store read per submission.
// Only content is cached (nickname, password, questions); results never are.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		if quiz, ok := c.lookup(quizID); ok {
			return quiz, nil
		}

		loadCtx, cancel := sharedLoadContext(ctx)
		defer cancel()
		quiz, err := c.loader.GetQuiz(loadCtx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		content := quiz.Content()

		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			c.cache[quizID] = cachedQuiz{quiz: content, expiresAt: c.clock().Add(ttl)}
			c.mu.Unlock()
		}
		return content, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz).Content(), nil
}

// sharedLoadContext detaches a singleflight load from the cancellation of the
// caller that started it, since other callers wait on the same load. The
// caller's deadline still bounds it.
func sharedLoadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return context.WithCancel(detached)
}

// Invalidate drops the cached content of a quiz, e.g. after deletion.
func (c *QuizCache) Invalidate(quizID string) {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
	c.sf.Forget(quizID)
}

func (c *QuizCache) lookup(quizID string) (domain.Quiz, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Quiz{}, false
	}
	return entry.quiz.Content(), true
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
