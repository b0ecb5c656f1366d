package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"medico-news/internal/config"
	"medico-news/internal/domain/entity"
	"medico-news/internal/observability/metrics"
	"medico-news/internal/repository"
)

// FeedFetcher is an interface for fetching a feed document from a URL and
// returning its items in the feed's natural order.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]RawItem, error)
}

// Config bounds an aggregation run. The defaults match the storefront's
// observed behavior: at most 5 items per source, 20 overall.
type Config struct {
	// PerSourceLimit caps how many raw items one source may contribute,
	// bounding the impact of a single noisy feed.
	PerSourceLimit int
	// TotalLimit caps the size of the final merged batch.
	TotalLimit int
	// FetchParallelism caps concurrent feed fetches.
	FetchParallelism int
}

// DefaultConfig returns the standard aggregation bounds.
func DefaultConfig() Config {
	return Config{
		PerSourceLimit:   5,
		TotalLimit:       20,
		FetchParallelism: 4,
	}
}

// Service orchestrates the news pipeline: fetch every configured source,
// normalize, merge into one bounded batch, and atomically replace the stored
// article set. It also backs the read side of the news API.
type Service struct {
	Repo    repository.NewsArticleRepository
	Fetcher FeedFetcher
	Sources []config.FeedSource
	Config  Config

	// refreshMu serializes runs so two replace-all writers never race.
	refreshMu sync.Mutex
}

// NewService creates a news Service with the provided dependencies.
func NewService(repo repository.NewsArticleRepository, fetcher FeedFetcher, sources []config.FeedSource, cfg Config) *Service {
	if cfg.PerSourceLimit <= 0 {
		cfg.PerSourceLimit = DefaultConfig().PerSourceLimit
	}
	if cfg.TotalLimit <= 0 {
		cfg.TotalLimit = DefaultConfig().TotalLimit
	}
	if cfg.FetchParallelism <= 0 {
		cfg.FetchParallelism = DefaultConfig().FetchParallelism
	}
	return &Service{
		Repo:    repo,
		Fetcher: fetcher,
		Sources: sources,
		Config:  cfg,
	}
}

// RefreshStats contains statistics about one aggregation run.
type RefreshStats struct {
	Sources      int
	Items        int
	Skipped      int
	Written      int
	SourceErrors []*SourceError
	Duration     time.Duration
}

// Aggregate fetches every configured source concurrently and produces one
// bounded batch of articles sorted by publish date, newest first. Source
// failures are isolated: a failing source contributes zero items and is
// reported in the returned error list, never as a run failure. skipped
// counts items dropped by the normalizer.
func (s *Service) Aggregate(ctx context.Context) (batch []*entity.NewsArticle, skipped int, srcErrs []*SourceError) {
	logger := slog.Default()

	var (
		mu        sync.Mutex
		perSource = make([][]*entity.NewsArticle, len(s.Sources))
	)
	skippedBySource := make([]int, len(s.Sources))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.Config.FetchParallelism)

	for i, src := range s.Sources {
		i, src := i, src
		eg.Go(func() error {
			items, err := s.Fetcher.Fetch(egCtx, src.URL)
			if err != nil {
				logger.Warn("failed to fetch feed",
					slog.String("source", src.Name),
					slog.String("feed_url", src.URL),
					slog.Any("error", err))
				metrics.RecordSourceFetch(src.Name, false)
				mu.Lock()
				srcErrs = append(srcErrs, &SourceError{SourceName: src.Name, FeedURL: src.URL, Err: err})
				mu.Unlock()
				return nil
			}
			metrics.RecordSourceFetch(src.Name, true)

			if len(items) > s.Config.PerSourceLimit {
				items = items[:s.Config.PerSourceLimit]
			}

			now := time.Now()
			articles := make([]*entity.NewsArticle, 0, len(items))
			for _, item := range items {
				article, reason := Normalize(item, src.Name, now)
				if reason != SkipNone {
					skippedBySource[i]++
					metrics.RecordItemSkipped(string(reason))
					continue
				}
				articles = append(articles, article)
			}
			metrics.RecordArticlesAggregated(src.Name, len(articles))
			perSource[i] = articles
			return nil
		})
	}
	_ = eg.Wait() // goroutines never return errors; failures are collected above

	// Merge in configured source order so equal timestamps keep a stable,
	// deterministic ordering regardless of fetch completion order.
	for i, articles := range perSource {
		batch = append(batch, articles...)
		skipped += skippedBySource[i]
	}

	sort.SliceStable(batch, func(a, b int) bool {
		return batch[a].PublishedAt.After(batch[b].PublishedAt)
	})
	if len(batch) > s.Config.TotalLimit {
		batch = batch[:s.Config.TotalLimit]
	}

	return batch, skipped, srcErrs
}

// Refresh runs one full aggregation and atomically replaces the stored
// article set. Runs are serialized; a run starting while another is active
// fails fast with ErrRefreshInProgress. When every source fails the write is
// skipped entirely so the previously stored batch keeps serving readers.
func (s *Service) Refresh(ctx context.Context) (*RefreshStats, error) {
	if !s.refreshMu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()

	logger := slog.Default()
	start := time.Now()

	batch, skipped, srcErrs := s.Aggregate(ctx)

	stats := &RefreshStats{
		Sources:      len(s.Sources),
		Items:        len(batch) + skipped,
		Skipped:      skipped,
		SourceErrors: srcErrs,
	}

	if len(batch) == 0 {
		stats.Duration = time.Since(start)
		logger.Warn("aggregation produced no articles, keeping previous batch",
			slog.Int("sources", stats.Sources),
			slog.Int("source_errors", len(srcErrs)))
		metrics.RecordRefresh("empty", stats.Duration)
		return stats, nil
	}

	if err := s.Repo.ReplaceAll(ctx, batch); err != nil {
		stats.Duration = time.Since(start)
		metrics.RecordRefresh("failure", stats.Duration)
		return stats, fmt.Errorf("replace articles: %w", err)
	}

	stats.Written = len(batch)
	stats.Duration = time.Since(start)
	metrics.RecordRefresh("success", stats.Duration)

	// ゲージはストアの実数に合わせる（シード行が残っている場合もあるため）
	if stored, err := s.Repo.Count(ctx); err != nil {
		logger.Warn("failed to count stored articles", slog.Any("error", err))
		metrics.UpdateArticlesActive(len(batch))
	} else {
		metrics.UpdateArticlesActive(int(stored))
	}

	logger.Info("news refresh completed",
		slog.Int("sources", stats.Sources),
		slog.Int("written", stats.Written),
		slog.Int("skipped", stats.Skipped),
		slog.Int("source_errors", len(srcErrs)),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// Latest retrieves up to limit of the most recent active articles.
// A non-positive limit falls back to the default page size; oversized
// requests are clamped.
func (s *Service) Latest(ctx context.Context, limit int) ([]*entity.NewsArticle, error) {
	const (
		defaultLimit = 20
		maxLimit     = 100
	)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	articles, err := s.Repo.ListActive(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list active articles: %w", err)
	}
	return articles, nil
}

// Get retrieves one article by ID.
func (s *Service) Get(ctx context.Context, id int64) (*entity.NewsArticle, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	article, err := s.Repo.Get(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// ClearStaticSamples removes seeded placeholder rows from the article table.
func (s *Service) ClearStaticSamples(ctx context.Context) (int64, error) {
	n, err := s.Repo.DeleteStaticSamples(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear static samples: %w", err)
	}
	return n, nil
}
