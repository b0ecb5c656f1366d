package pathutil

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		// News routes with IDs (should be normalized)
		{
			name:     "news article with ID 123",
			path:     "/api/news/123",
			expected: "/api/news/:id",
		},
		{
			name:     "news article with ID 999999",
			path:     "/api/news/999999",
			expected: "/api/news/:id",
		},
		{
			name:     "news article with trailing slash",
			path:     "/api/news/123/",
			expected: "/api/news/:id",
		},
		{
			name:     "news article with query params",
			path:     "/api/news/123?full=1",
			expected: "/api/news/:id",
		},
		{
			name:     "unprefixed news route",
			path:     "/news/42",
			expected: "/news/:id",
		},

		// Static endpoints (should remain unchanged)
		{
			name:     "news list",
			path:     "/api/news",
			expected: "/api/news",
		},
		{
			name:     "news refresh",
			path:     "/api/news/refresh",
			expected: "/api/news/refresh",
		},
		{
			name:     "clear static samples",
			path:     "/api/news/clear-static",
			expected: "/api/news/clear-static",
		},
		{
			name:     "health endpoint",
			path:     "/health",
			expected: "/health",
		},
		{
			name:     "metrics endpoint",
			path:     "/metrics",
			expected: "/metrics",
		},

		// Unknown paths (should pass through)
		{
			name:     "unknown path with number",
			path:     "/unknown/path/123",
			expected: "/unknown/path/123",
		},
		{
			name:     "root path",
			path:     "/",
			expected: "/",
		},

		// Non-numeric suffixes are not IDs
		{
			name:     "non-numeric suffix",
			path:     "/api/news/abc",
			expected: "/api/news/abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePath(tt.path)
			if got != tt.expected {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}
