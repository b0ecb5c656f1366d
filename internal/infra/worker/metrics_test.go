package worker

import (
	"testing"
)

func TestNewWorkerMetrics(t *testing.T) {
	// globalTestMetrics is the package-wide instance created via NewWorkerMetrics
	m := globalTestMetrics

	if m == nil {
		t.Fatal("NewWorkerMetrics returned nil")
	}

	if m.ConfigMetrics == nil {
		t.Error("ConfigMetrics not initialized")
	}
	if m.CronJobRunsTotal == nil {
		t.Error("CronJobRunsTotal not initialized")
	}
	if m.CronJobDurationSeconds == nil {
		t.Error("CronJobDurationSeconds not initialized")
	}
	if m.CronJobArticlesWrittenTotal == nil {
		t.Error("CronJobArticlesWrittenTotal not initialized")
	}
	if m.CronJobLastSuccessTimestamp == nil {
		t.Error("CronJobLastSuccessTimestamp not initialized")
	}
}

func TestWorkerMetrics_Recorders(t *testing.T) {
	m := globalTestMetrics

	// Recorders must not panic; values are scraped, not read back here
	m.RecordJobRun("success")
	m.RecordJobRun("failure")
	m.RecordJobDuration(12.5)
	m.RecordArticlesWritten(20)
	m.RecordLastSuccess()
	m.MustRegister()
}
