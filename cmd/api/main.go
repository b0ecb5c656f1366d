package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"medico-news/internal/config"
	pgRepo "medico-news/internal/infra/adapter/persistence/postgres"
	"medico-news/internal/infra/db"
	"medico-news/internal/infra/feed"
	"medico-news/internal/observability/tracing"
	pkgconfig "medico-news/internal/pkg/config"

	hhttp "medico-news/internal/handler/http"
	hnews "medico-news/internal/handler/http/news"
	"medico-news/internal/handler/http/requestid"
	newsUC "medico-news/internal/usecase/news"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, version)

	runServer(logger, handler, version)
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

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// loadNewsConfig loads the aggregation bounds from environment variables
// with fail-open fallback to the defaults. The same variables drive the
// worker binary, so both triggers of the pipeline agree on the limits.
func loadNewsConfig(logger *slog.Logger) newsUC.Config {
	cfg := newsUC.DefaultConfig()

	load := func(envKey string, current int, max int) int {
		result := pkgconfig.LoadEnvInt(envKey, current, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, max)
		})
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("env_key", envKey),
				slog.String("warning", warning))
		}
		return result.Value.(int)
	}

	cfg.PerSourceLimit = load("NEWS_PER_SOURCE_LIMIT", cfg.PerSourceLimit, 100)
	cfg.TotalLimit = load("NEWS_TOTAL_LIMIT", cfg.TotalLimit, 500)
	cfg.FetchParallelism = load("NEWS_FETCH_PARALLELISM", cfg.FetchParallelism, 16)

	return cfg
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(logger *slog.Logger, database *sql.DB, version string) http.Handler {
	repo := pgRepo.NewNewsRepo(database)
	fetcher := feed.NewRSSFetcher(createHTTPClient())
	sources := config.LoadFeedSources(logger)
	newsSvc := newsUC.NewService(repo, fetcher, sources, loadNewsConfig(logger))

	logger.Info("news service initialized", slog.Int("sources", len(sources)))

	// レート制限: リフレッシュ系エンドポイントは1分間に5リクエストまで
	refreshRateLimiter := hhttp.NewRateLimiter(5, 1*time.Minute)

	mux := http.NewServeMux()
	hnews.Register(mux, newsSvc, logger, refreshRateLimiter)

	// ヘルスチェックエンドポイント
	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: Request ID → Recovery → Logging → Body Limit → Tracing → Metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain) // 1MB limit
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)
	middlewareChain = requestid.Middleware(middlewareChain)

	return middlewareChain
}

// createHTTPClient creates the outbound HTTP client used by the manual
// refresh trigger. TLS 1.2+ is enforced for security.
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

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":" + pkgconfig.LoadEnvString("API_PORT", "8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
