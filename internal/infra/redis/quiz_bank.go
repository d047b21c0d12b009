package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"smartlearn-monitor/internal/domain"
)

// QuizLoader fetches quiz content for a video from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, videoID string) (domain.Quiz, error)
}

// QuizBank caches whole quizzes as JSON in Redis (key quiz:{videoID}) and
// falls back to the loader on a miss. Unlike session state, quiz content is
// immutable per video, so a plain value with TTL is enough.
type QuizBank struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizBank(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizBank {
	return &QuizBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuizBank) GetQuiz(ctx context.Context, videoID string) (domain.Quiz, error) {
	key := b.key(videoID)

	if quiz, ok := b.cached(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := b.sf.Do(videoID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if quiz, ok := b.cached(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := b.loader.LoadQuiz(ctx, videoID)
		if err != nil {
			return domain.Quiz{}, err
		}

		raw, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		// Cache write is best-effort; a failed SET only costs a reload.
		_ = b.client.Set(ctx, key, raw, b.ttlWithJitter()).Err()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (b *QuizBank) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (b *QuizBank) key(videoID string) string {
	return "quiz:" + videoID
}

func (b *QuizBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
