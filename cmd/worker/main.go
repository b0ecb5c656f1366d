package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"medico-news/internal/config"
	"medico-news/internal/handler/http/respond"
	pgRepo "medico-news/internal/infra/adapter/persistence/postgres"
	"medico-news/internal/infra/db"
	"medico-news/internal/infra/feed"
	workerPkg "medico-news/internal/infra/worker"
	newsUC "medico-news/internal/usecase/news"
)

// waitForMigrations blocks until the schema managed by the API binary is
// present, so a worker started first does not fail its initial refresh.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM news_articles LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("refresh_timeout", workerConfig.RefreshTimeout),
		slog.Int("per_source_limit", workerConfig.PerSourceLimit),
		slog.Int("total_limit", workerConfig.TotalLimit),
		slog.Int("fetch_parallelism", workerConfig.FetchParallelism),
		slog.Int("health_port", workerConfig.HealthPort))

	// Start metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	svc := setupNewsService(logger, database, workerConfig)

	startCronWorker(logger, svc, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupNewsService wires the news refresh service with its dependencies:
// the Postgres repository, the RSS fetcher, and the configured feed sources.
func setupNewsService(logger *slog.Logger, database *sql.DB, cfg *workerPkg.WorkerConfig) *newsUC.Service {
	repo := pgRepo.NewNewsRepo(database)
	fetcher := feed.NewRSSFetcher(createHTTPClient())
	sources := config.LoadFeedSources(logger)

	logger.Info("news service initialized",
		slog.Int("sources", len(sources)))

	return newsUC.NewService(repo, fetcher, sources, newsUC.Config{
		PerSourceLimit:   cfg.PerSourceLimit,
		TotalLimit:       cfg.TotalLimit,
		FetchParallelism: cfg.FetchParallelism,
	})
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced for security.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// startCronWorker starts the cron scheduler and runs the refresh job periodically.
func startCronWorker(logger *slog.Logger, svc *newsUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runRefreshJob(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runRefreshJob executes a single refresh run with timeout and error handling.
func runRefreshJob(logger *slog.Logger, svc *newsUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	logger.Info("refresh started")

	// リフレッシュ処理のタイムアウト（設定から取得）
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RefreshTimeout)
	defer cancel()

	stats, err := svc.Refresh(ctx)
	if err != nil {
		if errors.Is(err, newsUC.ErrRefreshInProgress) {
			// A manual trigger is already running; the next tick picks up
			logger.Warn("refresh skipped, another run in progress")
			return
		}
		// 機密情報をマスクしてログ出力
		logger.Error("refresh failed", slog.String("error", respond.SanitizeError(err)))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordArticlesWritten(stats.Written)
	metrics.RecordLastSuccess()

	logger.Info("refresh completed",
		slog.Int("sources", stats.Sources),
		slog.Int("items", stats.Items),
		slog.Int("skipped", stats.Skipped),
		slog.Int("written", stats.Written),
		slog.Int("source_errors", len(stats.SourceErrors)),
		slog.Duration("duration", stats.Duration),
	)
}
