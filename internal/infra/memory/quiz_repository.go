package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quizzz-client/internal/domain"
)

// QuizLoader fetches quiz content from the backend.
type QuizLoader interface {
	GetQuiz(ctx context.Context, communityID, quizID int64) (domain.Quiz, error)
}

// QuizRepository caches quizzes with TTL to avoid repeated backend round-trips.
type QuizRepository struct {
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

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, communityID, quizID int64) (domain.Quiz, error) {
	key := cacheKey(communityID, quizID)
	if quiz, ok := r.lookup(key); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if quiz, ok := r.lookup(key); ok {
			return quiz, nil
		}

		quiz, err := r.loader.GetQuiz(ctx, communityID, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		r.mu.Lock()
		r.cache[key] = cachedQuiz{
			quiz:      quiz,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops a cached quiz so the next read goes to the backend.
func (r *QuizRepository) Invalidate(_ context.Context, communityID, quizID int64) {
	r.mu.Lock()
	delete(r.cache, cacheKey(communityID, quizID))
	r.mu.Unlock()
}

func (r *QuizRepository) lookup(key string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func cacheKey(communityID, quizID int64) string {
	return fmt.Sprintf("%d:%d", communityID, quizID)
}
