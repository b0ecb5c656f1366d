// Package config holds application-level configuration for the news backend,
// including the set of syndication feeds the aggregator pulls from.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedSource identifies one external syndication endpoint.
type FeedSource struct {
	// Name is the human-readable label stored alongside every article the
	// source produces.
	Name string `yaml:"name"`
	// URL is the feed document location.
	URL string `yaml:"url"`
}

// sourcesFile is the on-disk YAML shape for the feed list.
type sourcesFile struct {
	Sources []FeedSource `yaml:"sources"`
}

// DefaultFeedSources returns the built-in medical/health feed list used when
// no sources file is configured.
func DefaultFeedSources() []FeedSource {
	return []FeedSource{
		{Name: "BBC Health", URL: "https://feeds.bbci.co.uk/news/health/rss.xml"},
		{Name: "Science Daily Health", URL: "https://www.sciencedaily.com/rss/health_medicine.xml"},
		{Name: "Cleveland Clinic", URL: "https://health.clevelandclinic.org/feed"},
		{Name: "Mayo Clinic", URL: "https://www.mayoclinic.org/rss/all-podcasts"},
	}
}

// LoadFeedSources loads the feed list from the file named by the
// NEWS_SOURCES_FILE environment variable. When the variable is unset the
// built-in defaults are returned; when the file is unreadable or invalid the
// defaults are returned with a warning (fail-open, matching the rest of the
// configuration layer).
func LoadFeedSources(logger *slog.Logger) []FeedSource {
	path := os.Getenv("NEWS_SOURCES_FILE")
	if path == "" {
		return DefaultFeedSources()
	}

	sources, err := ParseSourcesFile(path)
	if err != nil {
		logger.Warn("failed to load feed sources, using defaults",
			slog.String("path", path),
			slog.Any("error", err))
		return DefaultFeedSources()
	}

	logger.Info("feed sources loaded",
		slog.String("path", path),
		slog.Int("count", len(sources)))
	return sources
}

// ParseSourcesFile reads and validates a YAML feed source list.
func ParseSourcesFile(path string) ([]FeedSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s contains no sources", path)
	}

	for i, src := range file.Sources {
		if src.Name == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}
		u, err := url.Parse(src.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("source %q: invalid url %q", src.Name, src.URL)
		}
	}

	return file.Sources, nil
}
