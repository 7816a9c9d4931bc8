package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"quiz-share/internal/domain"
)

func TestQuizStoreCreateAndGet(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()

	id, err := store.CreateQuiz(ctx, sampleQuiz("alice"))
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	quiz, err := store.GetQuiz(ctx, id)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.ID != id || quiz.Nickname != "alice" || len(quiz.Questions) != domain.QuestionCount {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if quiz.CreatedAt.IsZero() {
		t.Fatalf("expected creation time")
	}

	if _, err := store.GetQuiz(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuizStoreReturnsCopies(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()
	id, _ := store.CreateQuiz(ctx, sampleQuiz("alice"))

	quiz, _ := store.GetQuiz(ctx, id)
	quiz.Questions[0].Question = "mutated"

	again, _ := store.GetQuiz(ctx, id)
	if again.Questions[0].Question == "mutated" {
		t.Fatalf("store leaked internal state")
	}
}

func TestQuizStoreFindAndListInCreationOrder(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()
	for _, nick := range []string{"alice", "bob", "alice"} {
		if _, err := store.CreateQuiz(ctx, sampleQuiz(nick)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	matches, _ := store.FindByNickname(ctx, "alice")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	all, _ := store.ListQuizzes(ctx)
	if len(all) != 3 || all[0].Nickname != "alice" || all[1].Nickname != "bob" {
		t.Fatalf("unexpected list order %+v", all)
	}
}

func TestQuizStoreConcurrentAppendsKeepAll(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()
	id, _ := store.CreateQuiz(ctx, sampleQuiz("alice"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.AppendResult(ctx, id, domain.Result{ID: fmt.Sprintf("r%d", i), RespondentName: "p", Score: 20})
		}(i)
	}
	wg.Wait()

	quiz, _ := store.GetQuiz(ctx, id)
	if len(quiz.Results) != 50 {
		t.Fatalf("expected 50 results, got %d", len(quiz.Results))
	}
}

func TestQuizStoreAppendIsIdempotentPerResultID(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()
	id, _ := store.CreateQuiz(ctx, sampleQuiz("alice"))

	result := domain.Result{ID: "r1", RespondentName: "Bob", Score: 80}
	for i := 0; i < 3; i++ {
		if err := store.AppendResult(ctx, id, result); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	quiz, _ := store.GetQuiz(ctx, id)
	if len(quiz.Results) != 1 {
		t.Fatalf("expected a single result, got %d", len(quiz.Results))
	}

	if err := store.AppendResult(ctx, "missing", result); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuizStoreDelete(t *testing.T) {
	store := NewQuizStore()
	ctx := context.Background()
	id, _ := store.CreateQuiz(ctx, sampleQuiz("alice"))

	if err := store.DeleteQuiz(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetQuiz(ctx, id); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected deleted quiz to be gone, got %v", err)
	}
	if all, _ := store.ListQuizzes(ctx); len(all) != 0 {
		t.Fatalf("expected empty list, got %d", len(all))
	}
	if err := store.DeleteQuiz(ctx, id); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func sampleQuiz(nickname string) domain.Quiz {
	return domain.Quiz{
		Nickname: nickname,
		Password: "1234",
		Questions: []domain.Question{
			{Question: "Go has generics", Answer: true},
			{Question: "Go has exceptions", Answer: false},
			{Question: "Maps are ordered", Answer: false},
			{Question: "Slices are references to arrays", Answer: true},
			{Question: "gofmt is optional style", Answer: false},
		},
	}
}
