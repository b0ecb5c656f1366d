// Package entity defines the core domain entities and validation logic for the application.
// It contains the canonical NewsArticle record produced by feed aggregation,
// along with its field limits and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Field limits matching the news_articles column definitions.
const (
	// MaxTitleLen is the hard cap on article titles.
	MaxTitleLen = 500
	// MaxDescriptionLen is the hard cap on list-preview descriptions.
	MaxDescriptionLen = 1000
)

// StaticSamplePrefix marks seeded placeholder rows that the read API hides
// and the clear-static admin operation removes.
const StaticSamplePrefix = "https://example.com"

// NewsArticle represents one normalized news item in the system.
// Articles are created only by an aggregation run and replaced wholesale by
// the next successful run; they are never updated individually.
type NewsArticle struct {
	ID          int64
	Title       string
	Description string
	Content     string
	ImageURL    string
	SourceURL   string
	SourceName  string
	PublishedAt time.Time
	CreatedAt   time.Time
	IsActive    bool
}

// Validate checks the invariants a storage-ready article must satisfy.
// Title and SourceURL are the item's identity; everything else is optional.
func (a *NewsArticle) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if strings.TrimSpace(a.SourceURL) == "" {
		return &ValidationError{Field: "source_url", Message: "must not be empty"}
	}
	if len([]rune(a.Title)) > MaxTitleLen {
		return &ValidationError{Field: "title", Message: "too long"}
	}
	if len([]rune(a.Description)) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Message: "too long"}
	}
	return nil
}

// IsStaticSample reports whether the article is seeded placeholder data
// rather than a genuine aggregated item.
func (a *NewsArticle) IsStaticSample() bool {
	return strings.HasPrefix(a.SourceURL, StaticSamplePrefix)
}
