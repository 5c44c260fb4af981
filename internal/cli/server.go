package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-alarm-service/internal/app"
	"quiz-alarm-service/internal/config"
	"quiz-alarm-service/internal/domain"
	"quiz-alarm-service/internal/infra/memory"
	"quiz-alarm-service/internal/infra/postgres"
	infraredis "quiz-alarm-service/internal/infra/redis"
	"quiz-alarm-service/internal/jobs"
	transport "quiz-alarm-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the alarm server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var questionStore app.QuestionStore
	var configStore app.ConfigStore
	if pool != nil {
		questionStore = postgres.NewQuestionStore(pool)
		configStore = postgres.NewConfigStore(pool)
	} else {
		questionStore = memory.NewQuestionStore(sampleQuestions())
		configStore = memory.NewConfigStore()
	}

	cacheSize := cfg.CacheSize(10)
	var questionCache app.QuestionCache
	var stateStore app.StateStore
	if redisClient != nil {
		questionCache = infraredis.NewQuestionCache(redisClient, cacheSize)
		stateStore = infraredis.NewStateStore(redisClient)
	} else {
		questionCache = memory.NewQuestionCache()
		stateStore = memory.NewStateStore()
	}

	fetchTimeout := config.Duration(cfg.Scheduler.FetchTimeout, 5*time.Second)
	provider := app.NewQuestionProvider(questionStore, questionCache, fetchTimeout, cacheSize)

	hub := transport.NewHub()

	var snooze app.SnoozeScheduler
	var snoozeManager *jobs.SnoozeManager
	if redisClient != nil {
		snoozeManager = jobs.NewSnoozeManager(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		snoozeManager.RegisterHandlers(hub)
		go func() {
			if err := snoozeManager.Start(); err != nil {
				log.Printf("snooze worker stopped: %v", err)
			}
		}()
		defer snoozeManager.Stop()
		snooze = snoozeManager
	} else {
		snooze = memory.NewSnoozeTimer(func(payload domain.NotificationPayload) {
			if err := hub.Notify(context.Background(), payload); err != nil {
				log.Printf("snooze notification for alarm %d: %v", payload.AlarmID, err)
			}
		})
	}

	scheduler := app.NewScheduler(configStore, provider, stateStore, hub, hub, snooze, app.SchedulerOptions{
		CoarseTick:  config.Duration(cfg.Scheduler.CoarseTick, 10*time.Second),
		FineTick:    config.Duration(cfg.Scheduler.FineTick, time.Second),
		Cooldown:    config.Duration(cfg.Scheduler.Cooldown, 50*time.Second),
		SnoozeDelay: config.Duration(cfg.Scheduler.SnoozeDelay, 5*time.Minute),
	})
	if err := scheduler.Recover(ctx); err != nil {
		log.Printf("recover active alarms: %v", err)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go scheduler.Run(runCtx)

	questionService := app.NewQuestionService(questionStore)
	api := transport.NewAPIHandler(scheduler, questionService)
	ws := transport.NewWSHandler(scheduler, hub)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(api, ws),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz alarm service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
