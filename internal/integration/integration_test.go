package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"quiz-alarm-service/internal/app"
	"quiz-alarm-service/internal/domain"
	inframem "quiz-alarm-service/internal/infra/memory"
	pgstore "quiz-alarm-service/internal/infra/postgres"
	pgmigrations "quiz-alarm-service/internal/infra/postgres/migrations"
	infraredis "quiz-alarm-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestAlarmLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDatabase(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	questions := pgstore.NewQuestionStore(pool)
	seeded, err := questions.Create(ctx, domain.Question{
		Exam:          domain.ExamGMAT,
		Type:          "quantitative",
		Subcategory:   "algebra",
		Text:          "If $x + 3 = 8$, what is $x$?",
		CorrectAnswer: "5",
		Choices:       []string{"3", "4", "5", "6"},
		Difficulty:    "easy",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}
	if seeded.ID == 0 {
		t.Fatalf("seeded question got no id")
	}

	clock := newFakeClock(time.Date(2026, 1, 5, 6, 0, 30, 0, time.UTC)) // Monday
	configs := pgstore.NewConfigStore(pool)
	cache := infraredis.NewQuestionCache(redisClient, 10)
	state := infraredis.NewStateStore(redisClient)
	provider := app.NewQuestionProvider(questions, cache, 5*time.Second, 10)
	alert := inframem.NewAlertRecorder()
	notify := inframem.NewNotificationRecorder()
	snooze := inframem.NewSnoozeTimer(nil)

	scheduler := app.NewScheduler(configs, provider, state, alert, notify, snooze, app.SchedulerOptions{
		Clock: clock.Now,
	})

	cfg, err := scheduler.CreateAlarm(ctx, domain.AlarmConfig{
		Name:         "morning drill",
		Time:         "06:00",
		Days:         [7]bool{true, true, true, true, true, true, true},
		Exam:         domain.ExamGMAT,
		QuestionType: "quantitative",
		Subcategory:  domain.AnySubcategory,
		Difficulty:   domain.AnyDifficulty,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create alarm: %v", err)
	}

	// Creation warms the cache for the config's exam/type pair.
	cached, err := cache.Get(ctx, domain.ExamGMAT, "quantitative")
	if err != nil {
		t.Fatalf("cache get: %v", err)
	}
	if len(cached) == 0 {
		t.Fatalf("expected warmed cache after create")
	}

	scheduler.Tick(ctx)
	ringing := scheduler.ActiveAlarms()
	if len(ringing) != 1 || ringing[0].AlarmID != cfg.ID {
		t.Fatalf("expected alarm %d ringing, got %+v", cfg.ID, ringing)
	}
	if ringing[0].Question == nil || ringing[0].Question.CorrectAnswer != "5" {
		t.Fatalf("instance missing seeded question: %+v", ringing[0].Question)
	}
	if !alert.Started(cfg.ID) {
		t.Fatalf("alert bridge never engaged")
	}

	// The instance snapshot must survive a process restart.
	restarted := app.NewScheduler(configs, provider, state, alert, notify, snooze, app.SchedulerOptions{
		Clock: clock.Now,
	})
	if err := restarted.Recover(ctx); err != nil {
		t.Fatalf("recover: %v", err)
	}
	if len(restarted.ActiveAlarms()) != 1 {
		t.Fatalf("recovered scheduler lost the ringing instance")
	}

	if ok, err := scheduler.SubmitAnswer(ctx, cfg.ID, "4"); err != nil || ok {
		t.Fatalf("wrong answer accepted: ok=%v err=%v", ok, err)
	}
	if len(scheduler.ActiveAlarms()) != 1 {
		t.Fatalf("wrong answer dismissed the alarm")
	}

	if ok, err := scheduler.SubmitAnswer(ctx, cfg.ID, "5"); err != nil || !ok {
		t.Fatalf("correct answer rejected: ok=%v err=%v", ok, err)
	}
	if len(scheduler.ActiveAlarms()) != 0 {
		t.Fatalf("alarm still ringing after correct answer")
	}

	persisted, err := state.ListActiveAlarms(ctx)
	if err != nil {
		t.Fatalf("list persisted: %v", err)
	}
	if len(persisted) != 0 {
		t.Fatalf("dismissal left stale snapshots: %+v", persisted)
	}

	stats, err := state.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Total != 2 || stats[0].Correct != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func migrateDatabase(t *testing.T, ctx context.Context, dsn string) {
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
		Env:          map[string]string{"POSTGRES_USER": "alarm", "POSTGRES_PASSWORD": "alarmpass", "POSTGRES_DB": "alarmdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://alarm:alarmpass@%s:%s/alarmdb?sslmode=disable", host, port.Port())
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
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
