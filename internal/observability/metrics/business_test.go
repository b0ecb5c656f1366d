package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordSourceFetch(t *testing.T) {
	tests := []struct {
		name       string
		sourceName string
		success    bool
	}{
		{
			name:       "successful fetch",
			sourceName: "BBC Health",
			success:    true,
		},
		{
			name:       "failed fetch",
			sourceName: "Mayo Clinic",
			success:    false,
		},
		{
			name:       "empty source name",
			sourceName: "",
			success:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordSourceFetch(tt.sourceName, tt.success)
			})
		})
	}
}

func TestRecordArticlesAggregated(t *testing.T) {
	tests := []struct {
		name       string
		sourceName string
		count      int
	}{
		{
			name:       "single article",
			sourceName: "Science Daily",
			count:      1,
		},
		{
			name:       "full source batch",
			sourceName: "Cleveland Clinic",
			count:      5,
		},
		{
			name:       "zero articles",
			sourceName: "Empty Source",
			count:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordArticlesAggregated(tt.sourceName, tt.count)
			})
		})
	}
}

func TestRecordItemSkipped(t *testing.T) {
	for _, reason := range []string{"missing_title", "missing_link", ""} {
		assert.NotPanics(t, func() {
			RecordItemSkipped(reason)
		})
	}
}

func TestRecordRefresh(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		duration time.Duration
	}{
		{
			name:     "successful run",
			status:   "success",
			duration: 2 * time.Second,
		},
		{
			name:     "empty run",
			status:   "empty",
			duration: 500 * time.Millisecond,
		},
		{
			name:     "failed run",
			status:   "failure",
			duration: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordRefresh(tt.status, tt.duration)
			})
		})
	}
}

func TestUpdateArticlesActive(t *testing.T) {
	for _, count := range []int{0, 1, 20} {
		assert.NotPanics(t, func() {
			UpdateArticlesActive(count)
		})
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordHTTPRequest("GET", "/api/news", "200", 15*time.Millisecond, 0, 2048)
	})
}
