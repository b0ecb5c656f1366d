package worker

import (
	"medico-news/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the refresh worker. It
// embeds ConfigMetrics for configuration monitoring and adds cron job
// execution tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_validation_errors_total
//   - worker_config_fallbacks_total
//   - worker_config_fallback_active
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: Total refresh runs by status (success/failure)
//   - worker_cron_job_duration_seconds: Duration histogram of refresh runs
//   - worker_cron_job_articles_written_total: Total articles written across runs
//   - worker_cron_job_last_success_timestamp: Unix timestamp of last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts refresh runs by status ("success" or "failure").
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures how long each refresh run takes.
	// Buckets cover 1s to 30m; a scheduled run normally finishes well
	// under a minute, the tail exists for slow upstream feeds.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobArticlesWrittenTotal counts articles written across all runs.
	CronJobArticlesWrittenTotal prometheus.Counter

	// CronJobLastSuccessTimestamp is the Unix time of the last successful run.
	// Alert when now() minus this gauge exceeds twice the cron interval.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a WorkerMetrics instance. Metrics register with
// the Prometheus default registry via promauto, so construct at most once
// per process.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of refresh runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of refresh run execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobArticlesWrittenTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_articles_written_total",
			Help: "Total number of articles written across all refresh runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh run",
		}),
	}
}

// MustRegister is a no-op kept for symmetry with the usual metrics
// initialization pattern; registration already happened via promauto.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the run counter for the given status
// ("success" or "failure").
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a refresh run in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordArticlesWritten adds the number of articles written by a run.
func (m *WorkerMetrics) RecordArticlesWritten(count int) {
	m.CronJobArticlesWrittenTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
