package db

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pkgconfig "medico-news/internal/pkg/config"
)

// PoolConfig bounds the sql.DB connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns the pool bounds used when nothing is overridden
// via environment variables.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open connects to the database named by DATABASE_URL and applies pool
// bounds from the environment. The binaries cannot do anything useful
// without the store, so any failure here is fatal.
func Open() *sql.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	database, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal(err)
	}

	cfg := loadPoolConfig(slog.Default())
	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	slog.Info("database connection established")
	return database
}

// loadPoolConfig reads pool overrides from the environment. Invalid values
// fall back to the defaults with a warning, the same fail-open policy the
// rest of the configuration follows.
func loadPoolConfig(logger *slog.Logger) PoolConfig {
	cfg := DefaultPoolConfig()

	load := func(result pkgconfig.ConfigLoadResult) pkgconfig.ConfigLoadResult {
		for _, warning := range result.Warnings {
			logger.Warn("database pool configuration fallback", slog.String("warning", warning))
		}
		return result
	}

	positiveInt := func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 10000) }

	cfg.MaxOpenConns = load(pkgconfig.LoadEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns, positiveInt)).Value.(int)
	cfg.MaxIdleConns = load(pkgconfig.LoadEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns, positiveInt)).Value.(int)
	cfg.ConnMaxLifetime = load(pkgconfig.LoadEnvDuration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime, pkgconfig.ValidatePositiveDuration)).Value.(time.Duration)
	cfg.ConnMaxIdleTime = load(pkgconfig.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime, pkgconfig.ValidatePositiveDuration)).Value.(time.Duration)

	return cfg
}
