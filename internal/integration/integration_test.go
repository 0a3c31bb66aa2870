package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quizzz-client/internal/api"
	"quizzz-client/internal/app"
	"quizzz-client/internal/domain"
	pgstore "quizzz-client/internal/infra/postgres"
	pgmigrations "quizzz-client/internal/infra/postgres/migrations"
	infraredis "quizzz-client/internal/infra/redis"
)

func TestDraftEditingAcrossInvocations(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	backend := newQuizBackend()
	server := httptest.NewServer(backend)
	defer server.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	client, err := api.New(server.URL, api.WithLogger(log))
	if err != nil {
		t.Fatalf("api client: %v", err)
	}

	newEditor := func() *app.QuizEditor {
		quizRepo := infraredis.NewQuizRepository(redisClient, client, 5*time.Minute, log)
		sessions := pgstore.NewSessionStore(pool)
		return app.NewQuizEditor(client, quizRepo, sessions, log, 5*time.Second)
	}

	// first invocation: pull and edit
	d, err := newEditor().Pull(ctx, 1, 9)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	editor := newEditor()
	if err := editor.SetQuestionText(d, 1, "What is 2 + 2?"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	for _, oid := range []domain.OptionID{10, 11} {
		if err := editor.SetOptionText(d, oid, fmt.Sprint(oid)); err != nil {
			t.Fatalf("edit option: %v", err)
		}
	}
	if err := editor.SetCorrectOption(d, 11); err != nil {
		t.Fatalf("set correct: %v", err)
	}
	if err := editor.Persist(ctx, d); err != nil {
		t.Fatalf("persist: %v", err)
	}

	// second invocation: reopen from postgres and finalize
	editor = newEditor()
	reopened, err := editor.Open(ctx, 9)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if reopened.Store.Question(1).Text != "What is 2 + 2?" || !reopened.Store.Option(11).IsCorrect {
		t.Fatalf("edits lost between invocations: %+v", reopened.Store.ToWireFormat())
	}
	if err := editor.Save(ctx, reopened, true); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !backend.finalized() {
		t.Fatalf("expected backend to receive finalized quiz")
	}
	if exists, _ := redisClient.Exists(ctx, "quizzz:quiz:1:9").Result(); exists != 0 {
		t.Fatalf("expected quiz cache invalidated after save")
	}
}

func TestPostgresSessionStore(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, cleanup := startPostgres(t, ctx)
	defer cleanup()
	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := pgstore.NewSessionStore(pool)
	if _, err := store.Load(ctx, "play:4"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.Save(ctx, "play:4", []byte(`{"round_id":4}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "play:4", []byte(`{"round_id":4,"answers":{"1":11}}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	data, err := store.Load(ctx, "play:4")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil || got["answers"] == nil {
		t.Fatalf("unexpected session %s (%v)", data, err)
	}
	if err := store.Delete(ctx, "play:4"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "play:4"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session deleted, got %v", err)
	}
}

// quizBackend serves GET and PUT for a single quiz.
type quizBackend struct {
	mu   sync.Mutex
	quiz domain.Quiz
}

func newQuizBackend() *quizBackend {
	return &quizBackend{quiz: domain.Quiz{
		ID:   9,
		Name: "Arithmetic",
		Questions: []domain.Question{
			{ID: 1, Options: []domain.Option{{ID: 10}, {ID: 11}}},
		},
	}}
}

func (b *quizBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/communities/1/quizzes/9/" {
		http.NotFound(w, r)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var in domain.QuizUpdate
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.quiz.Name = in.Name
		b.quiz.Introduction = in.Introduction
		b.quiz.IsFinalized = in.IsFinalized
		b.quiz.Questions = in.Questions
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = json.NewEncoder(w).Encode(b.quiz)
}

func (b *quizBackend) finalized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quiz.IsFinalized
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quizzz", "POSTGRES_PASSWORD": "quizzzpass", "POSTGRES_DB": "quizzz"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quizzz:quizzzpass@%s:%s/quizzz?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
