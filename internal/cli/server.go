package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-share/internal/app"
	"quiz-share/internal/config"
	"quiz-share/internal/infra/memory"
	pgstore "quiz-share/internal/infra/postgres"
	redisstore "quiz-share/internal/infra/redis"
	"quiz-share/internal/logging"
	"quiz-share/internal/metrics"
	transport "quiz-share/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	cache := memory.NewQuizCache(store, config.TTLDuration(cfg.Cache.TTL, 10*time.Minute))
	if cfg.Admin.Secret == config.DefaultAdminSecret {
		logger.Warn("admin secret is the default; set QUIZ_ADMIN_SECRET")
	}
	service := app.NewQuizService(store, app.NewAdminGate(cfg.Admin.Secret),
		app.WithContentCache(cache),
		app.WithStoreTimeout(config.TTLDuration(cfg.Store.Timeout, 5*time.Second)),
		app.WithRecorder(m),
		app.WithLogger(logger),
	)

	server := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     transport.NewRouter(service, m, logger),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: websocket attempts outlive a single request.
	}

	go func() {
		logger.Info("starting quiz-share", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore picks postgres when a URL is configured, then redis, else memory.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (app.QuizStore, func(), error) {
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using postgres store")
		return pgstore.NewQuizStore(pool), pool.Close, nil
	case cfg.Redis.Addr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("using redis store", zap.String("addr", cfg.Redis.Addr))
		return redisstore.NewQuizStore(client), func() { _ = client.Close() }, nil
	default:
		logger.Warn("no postgres or redis configured; quizzes are kept in memory")
		return memory.NewQuizStore(), func() {}, nil
	}
}
