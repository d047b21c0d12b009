package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartlearn-monitor/internal/domain"
)

func TestQuizBankCachesLoads(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"video-1": sampleQuiz(),
		}),
	}
	bank := NewQuizBank(loader, time.Minute)

	if _, err := bank.GetQuiz(context.Background(), "video-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call hits the cache.
	if _, err := bank.GetQuiz(context.Background(), "video-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuizBankPropagatesNotFound(t *testing.T) {
	bank := NewQuizBank(NewStaticQuizLoader(nil), time.Minute)
	_, err := bank.GetQuiz(context.Background(), "nope")
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz-not-found, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, videoID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, videoID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		VideoID: "video-1",
		Questions: []domain.Question{
			{Prompt: "Q1", Options: []string{"a", "b"}, Answer: "a", Hint: "h"},
		},
	}
}
