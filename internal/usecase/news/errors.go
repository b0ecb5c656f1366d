// Package news provides the use cases behind the storefront's health-news
// feature: aggregating configured syndication feeds into a bounded batch of
// canonical articles and atomically replacing the stored set.
package news

import (
	"errors"
	"fmt"
)

// Sentinel errors for news use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not found.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates that the provided article ID is invalid.
	// Article IDs must be positive integers.
	ErrInvalidArticleID = errors.New("invalid article ID")

	// ErrRefreshInProgress indicates that an aggregation run is already
	// executing. Runs are serialized to keep two replace-all writers from
	// racing on the article table.
	ErrRefreshInProgress = errors.New("news refresh already in progress")

	// ErrInvalidLimit indicates an unusable limit query parameter.
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// SourceError records a recoverable per-source failure during an aggregation
// run. One failing source never aborts the run; its error is collected here
// so callers and tests can see why a source contributed nothing.
type SourceError struct {
	SourceName string
	FeedURL    string
	Err        error
}

// Error returns a formatted error message naming the failed source.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q (%s): %v", e.SourceName, e.FeedURL, e.Err)
}

// Unwrap returns the underlying fetch or parse error.
func (e *SourceError) Unwrap() error {
	return e.Err
}
