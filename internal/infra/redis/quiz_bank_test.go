package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"smartlearn-monitor/internal/domain"
	"smartlearn-monitor/internal/infra/memory"
)

func TestQuizBankCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"video-1": sampleQuiz(),
		}),
	}
	bank := NewQuizBank(client, loader, time.Minute)

	quiz, err := bank.GetQuiz(context.Background(), "video-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Answer != "a" {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:video-1") {
		t.Fatalf("expected quiz cached in redis")
	}

	// Second call is served from redis; loader untouched.
	quiz, err = bank.GetQuiz(context.Background(), "video-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Questions[0].Hint != "h" {
		t.Fatalf("cache lost the hint: %+v", quiz.Questions[0])
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuizLoader
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

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
