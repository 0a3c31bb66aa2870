package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"quizzz-client/internal/api"
	"quizzz-client/internal/app"
	"quizzz-client/internal/config"
	"quizzz-client/internal/infra/file"
	"quizzz-client/internal/infra/memory"
	pgstore "quizzz-client/internal/infra/postgres"
	redisstore "quizzz-client/internal/infra/redis"
	"quizzz-client/internal/logging"
	"quizzz-client/internal/trivia"
)

// runtime holds everything a command needs, built from config.
type runtime struct {
	cfg     config.Config
	log     *logrus.Logger
	client  *api.Client
	timeout time.Duration

	quizzes  app.QuizRepository
	sessions app.SessionRepository

	redis *redis.Client
	pool  *pgxpool.Pool

	out    io.Writer
	errOut io.Writer
	format string
}

func newRuntime(cmd *cobra.Command, opts *globalOptions) (*runtime, error) {
	ctx := cmd.Context()
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	timeout := config.TTLDuration(cfg.API.Timeout, 15*time.Second)
	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(timeout),
		api.WithSession(cfg.API.SessionCookie),
		api.WithCSRFToken(cfg.API.CSRFToken),
		api.WithLogger(log.WithField("component", "api")),
	)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:     cfg,
		log:     log,
		client:  client,
		timeout: timeout,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		format:  opts.output,
	}

	if cfg.Redis.Addr != "" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			rt.Close()
			return nil, err
		}
		rt.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, err
		}
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	if rt.redis != nil {
		rt.quizzes = redisstore.NewQuizRepository(rt.redis, client, cacheTTL, log.WithField("component", "quiz-cache"))
	} else {
		rt.quizzes = memory.NewQuizRepository(client, cacheTTL)
	}

	switch {
	case rt.pool != nil:
		rt.sessions = pgstore.NewSessionStore(rt.pool)
	case rt.redis != nil:
		rt.sessions = redisstore.NewSessionStore(rt.redis, config.TTLDuration(cfg.Redis.TTL, 0))
	case cfg.Sessions.Store == "memory":
		rt.sessions = memory.NewSessionStore()
	default:
		dir, err := sessionDir(cfg)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.sessions = file.NewSessionStore(dir)
	}
	return rt, nil
}

func sessionDir(cfg config.Config) (string, error) {
	if cfg.Sessions.Dir != "" {
		return cfg.Sessions.Dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate session dir: %w", err)
	}
	return filepath.Join(base, "quizzz", "sessions"), nil
}

func (rt *runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
}

func (rt *runtime) quizEditor() *app.QuizEditor {
	return app.NewQuizEditor(rt.client, rt.quizzes, rt.sessions, rt.log.WithField("component", "editor"), rt.timeout)
}

func (rt *runtime) roundScheduler() *app.RoundScheduler {
	return app.NewRoundScheduler(rt.client, rt.log.WithField("component", "rounds"), rt.timeout)
}

func (rt *runtime) tournaments() *app.TournamentService {
	return app.NewTournamentService(rt.client, rt.log.WithField("component", "tournaments"), rt.timeout)
}

func (rt *runtime) plays() *app.PlayService {
	return app.NewPlayService(rt.client, rt.sessions, rt.log.WithField("component", "play"), rt.timeout)
}

func (rt *runtime) communities(userID int64) *app.CommunityService {
	if userID == 0 {
		userID = rt.cfg.API.UserID
	}
	return app.NewCommunityService(rt.client, userID, rt.log.WithField("component", "communities"), rt.timeout)
}

func (rt *runtime) board() *app.RoundBoard {
	return app.NewRoundBoard(rt.client, rt.log.WithField("component", "board"))
}

func (rt *runtime) trivia() *trivia.Client {
	return trivia.NewClient(rt.cfg.Trivia.BaseURL, rt.log.WithField("component", "trivia"))
}

// withRuntime adapts a command body that needs a runtime into a RunE.
func withRuntime(opts *globalOptions, fn func(ctx context.Context, rt *runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, opts)
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(cmd.Context(), rt, args)
	}
}
