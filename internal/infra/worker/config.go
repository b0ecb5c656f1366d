package worker

import (
	"fmt"
	"log/slog"
	"time"

	"medico-news/internal/pkg/config"
)

// WorkerConfig holds the configuration for the refresh worker. It controls
// the cron schedule, scheduling timezone, aggregation limits, and the health
// server port.
//
// Configuration comes from environment variables via LoadConfigFromEnv with
// DefaultConfig supplying every fallback, so the worker can always start
// with a usable configuration even when the environment is broken.
type WorkerConfig struct {
	// CronSchedule is the cron expression for the periodic refresh.
	// Format: "minute hour day month weekday"
	// Default: "0 */6 * * *" (every 6 hours)
	CronSchedule string

	// Timezone is the IANA timezone name used for cron scheduling.
	// Default: "UTC"
	Timezone string

	// RefreshTimeout is the maximum duration for a single refresh run.
	// The run is cancelled via context when the timeout elapses.
	// Range: 30s-1h, Default: 10 minutes
	RefreshTimeout time.Duration

	// PerSourceLimit is the maximum number of articles kept per feed source.
	// Range: 1-100, Default: 5
	PerSourceLimit int

	// TotalLimit is the maximum number of articles kept per refresh across
	// all sources combined.
	// Range: 1-500, Default: 20
	TotalLimit int

	// FetchParallelism is the number of feed sources fetched concurrently.
	// Range: 1-16, Default: 4
	FetchParallelism int

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535, Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production defaults: a refresh
// every 6 hours in UTC, limits matching the storefront news widget (5 per
// source, 20 total), and a 10-minute ceiling per run so a stalled upstream
// cannot wedge the scheduler.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:     "0 */6 * * *",
		Timezone:         "UTC",
		RefreshTimeout:   10 * time.Minute,
		PerSourceLimit:   5,
		TotalLimit:       20,
		FetchParallelism: 4,
		HealthPort:       9091,
	}
}

// Validate checks the configuration values using the reusable validators
// from internal/pkg/config. All failures are collected and returned as a
// single aggregated error.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cron schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateDuration(c.RefreshTimeout, 30*time.Second, 1*time.Hour); err != nil {
		errors = append(errors, fmt.Errorf("refresh timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.PerSourceLimit, 1, 100); err != nil {
		errors = append(errors, fmt.Errorf("per source limit: %w", err))
	}

	if err := config.ValidateIntRange(c.TotalLimit, 1, 500); err != nil {
		errors = append(errors, fmt.Errorf("total limit: %w", err))
	}

	if err := config.ValidateIntRange(c.FetchParallelism, 1, 16); err != nil {
		errors = append(errors, fmt.Errorf("fetch parallelism: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to defaults (fail-open).
//
// Environment variables:
//   - CRON_SCHEDULE: Cron expression (default: "0 */6 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - REFRESH_TIMEOUT: Duration string, 30s-1h (default: "10m")
//   - NEWS_PER_SOURCE_LIMIT: Integer 1-100 (default: 5)
//   - NEWS_TOTAL_LIMIT: Integer 1-500 (default: 20)
//   - NEWS_FETCH_PARALLELISM: Integer 1-16 (default: 4)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//
// Every fallback increments the validation error and fallback counters on
// the supplied metrics and logs a warning; the function never returns an
// error so a bad value cannot prevent startup.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	recordFallback := func(field string, warnings []string) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		recordFallback("cron_schedule", result.Warnings)
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		recordFallback("timezone", result.Warnings)
	}

	result = config.LoadEnvDuration("REFRESH_TIMEOUT", cfg.RefreshTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 30*time.Second, 1*time.Hour)
	})
	cfg.RefreshTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		recordFallback("refresh_timeout", result.Warnings)
	}

	result = config.LoadEnvInt("NEWS_PER_SOURCE_LIMIT", cfg.PerSourceLimit, func(v int) error {
		return config.ValidateIntRange(v, 1, 100)
	})
	cfg.PerSourceLimit = result.Value.(int)
	if result.FallbackApplied {
		recordFallback("per_source_limit", result.Warnings)
	}

	result = config.LoadEnvInt("NEWS_TOTAL_LIMIT", cfg.TotalLimit, func(v int) error {
		return config.ValidateIntRange(v, 1, 500)
	})
	cfg.TotalLimit = result.Value.(int)
	if result.FallbackApplied {
		recordFallback("total_limit", result.Warnings)
	}

	result = config.LoadEnvInt("NEWS_FETCH_PARALLELISM", cfg.FetchParallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 16)
	})
	cfg.FetchParallelism = result.Value.(int)
	if result.FallbackApplied {
		recordFallback("fetch_parallelism", result.Warnings)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		recordFallback("health_port", result.Warnings)
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
