package redis

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"quizzz-client/internal/domain"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{quiz: sampleQuiz()}
	repo := NewQuizRepository(client, loader, time.Minute, quietLogger())

	quiz, err := repo.GetQuiz(context.Background(), 1, 9)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	if !mr.Exists("quizzz:quiz:1:9") {
		t.Fatalf("expected quiz stored in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.GetQuiz(context.Background(), 1, 9)
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
	if len(cached.Questions) != 1 || cached.Questions[0].Options[1].IsCorrect != quiz.Questions[0].Options[1].IsCorrect {
		t.Fatalf("cached quiz differs: %+v", cached)
	}

	repo.Invalidate(context.Background(), 1, 9)
	if mr.Exists("quizzz:quiz:1:9") {
		t.Fatalf("expected invalidate to drop key")
	}
}

func TestQuizRepositoryExpiresWithTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{quiz: sampleQuiz()}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute, quietLogger())

	_, _ = repo.GetQuiz(context.Background(), 1, 9)
	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), 1, 9)
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls=%d", loader.count())
	}
}

type countingLoader struct {
	mu    sync.Mutex
	calls int
	quiz  domain.Quiz
}

func (l *countingLoader) GetQuiz(context.Context, int64, int64) (domain.Quiz, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.quiz, nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:   9,
		Name: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:   1,
				Text: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: 10, Text: "3", IsCorrect: false},
					{ID: 11, Text: "4", IsCorrect: true},
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
