package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"quizzz-client/internal/domain"
)

// QuizLoader fetches quiz content from the backend.
type QuizLoader interface {
	GetQuiz(ctx context.Context, communityID, quizID int64) (domain.Quiz, error)
}

// QuizRepository caches quizzes as JSON values in Redis, shared by every
// client process pointing at the same instance, and falls back to the
// loader on a miss.
// Quizzes are stored as: SET quizzz:quiz:{communityID}:{quizID} {json} EX ttl
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	log    logrus.FieldLogger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration, log logrus.FieldLogger) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, communityID, quizID int64) (domain.Quiz, error) {
	key := r.quizKey(communityID, quizID)
	if quiz, ok := r.cached(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := r.loader.GetQuiz(ctx, communityID, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		if err := r.client.Set(ctx, key, data, r.ttlWithJitter()).Err(); err != nil {
			// best-effort cache fill
			r.log.WithError(err).WithField("key", key).Warn("quiz cache write failed")
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops a cached quiz.
func (r *QuizRepository) Invalidate(ctx context.Context, communityID, quizID int64) {
	key := r.quizKey(communityID, quizID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("quiz cache invalidate failed")
	}
}

func (r *QuizRepository) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) quizKey(communityID, quizID int64) string {
	return fmt.Sprintf("quizzz:quiz:%d:%d", communityID, quizID)
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
