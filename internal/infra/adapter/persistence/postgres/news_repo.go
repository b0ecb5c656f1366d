// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medico-news/internal/domain/entity"
	"medico-news/internal/observability/metrics"
	"medico-news/internal/repository"
)

// replaceAllLockKey is the advisory lock key guarding replace-all runs.
// Taking it inside the transaction serializes writers across processes
// (the API's manual refresh and the worker's scheduled one); the lock is
// released automatically at commit or rollback.
const replaceAllLockKey = 874230011

type NewsRepo struct {
	db *sql.DB
}

func NewNewsRepo(db *sql.DB) repository.NewsArticleRepository {
	return &NewsRepo{db: db}
}

func (repo *NewsRepo) ListActive(ctx context.Context, limit int) ([]*entity.NewsArticle, error) {
	defer observeQuery("list_active")()
	const query = `
SELECT id, title, description, content, image_url, source_url, source_name, published_at, created_at, is_active
FROM news_articles
WHERE is_active = TRUE
  AND source_url NOT LIKE $1
ORDER BY published_at DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, entity.StaticSamplePrefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.NewsArticle, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *NewsRepo) Get(ctx context.Context, id int64) (*entity.NewsArticle, error) {
	defer observeQuery("get")()
	const query = `
SELECT id, title, description, content, image_url, source_url, source_name, published_at, created_at, is_active
FROM news_articles
WHERE id = $1
LIMIT 1`
	var (
		article                        entity.NewsArticle
		description, content, imageURL sql.NullString
		sourceName                     sql.NullString
	)
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&article.ID, &article.Title, &description, &content, &imageURL,
			&article.SourceURL, &sourceName, &article.PublishedAt, &article.CreatedAt, &article.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	article.Description = description.String
	article.Content = content.String
	article.ImageURL = imageURL.String
	article.SourceName = sourceName.String
	return &article, nil
}

// ReplaceAll swaps the stored article set for the given batch inside a single
// transaction. Readers see either the previous batch or the new one; an
// insert failure rolls everything back and leaves the previous batch intact.
// An advisory lock serializes concurrent replace-all writers across processes.
func (repo *NewsRepo) ReplaceAll(ctx context.Context, articles []*entity.NewsArticle) error {
	defer observeQuery("replace_all")()

	// 書き込み前に不正な記事を弾く
	for _, article := range articles {
		if err := article.Validate(); err != nil {
			return fmt.Errorf("ReplaceAll: %w", err)
		}
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceAll: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, replaceAllLockKey); err != nil {
		return fmt.Errorf("ReplaceAll: advisory lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM news_articles`); err != nil {
		return fmt.Errorf("ReplaceAll: delete: %w", err)
	}

	const insert = `
INSERT INTO news_articles
       (title, description, content, image_url, source_url, source_name, published_at, created_at, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, article := range articles {
		_, err := tx.ExecContext(ctx, insert,
			article.Title,
			nullIfEmpty(article.Description),
			nullIfEmpty(article.Content),
			nullIfEmpty(article.ImageURL),
			article.SourceURL,
			nullIfEmpty(article.SourceName),
			article.PublishedAt,
			article.CreatedAt,
			article.IsActive,
		)
		if err != nil {
			return fmt.Errorf("ReplaceAll: insert %q: %w", article.SourceURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ReplaceAll: commit: %w", err)
	}
	return nil
}

func (repo *NewsRepo) DeleteStaticSamples(ctx context.Context) (int64, error) {
	defer observeQuery("delete_static_samples")()
	const query = `DELETE FROM news_articles WHERE source_url LIKE $1`
	res, err := repo.db.ExecContext(ctx, query, entity.StaticSamplePrefix+"%")
	if err != nil {
		return 0, fmt.Errorf("DeleteStaticSamples: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteStaticSamples: RowsAffected: %w", err)
	}
	return n, nil
}

func (repo *NewsRepo) Count(ctx context.Context) (int64, error) {
	defer observeQuery("count")()
	const query = `SELECT COUNT(*) FROM news_articles`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// observeQuery records the duration of one repository operation.
// Use as: defer observeQuery("get")().
func observeQuery(operation string) func() {
	start := time.Now()
	return func() {
		metrics.RecordOperationDuration(operation, time.Since(start))
	}
}

// scanArticle reads one news_articles row, folding nullable columns into
// empty strings.
func scanArticle(rows *sql.Rows) (*entity.NewsArticle, error) {
	var (
		article                        entity.NewsArticle
		description, content, imageURL sql.NullString
		sourceName                     sql.NullString
	)
	if err := rows.Scan(&article.ID, &article.Title, &description, &content, &imageURL,
		&article.SourceURL, &sourceName, &article.PublishedAt, &article.CreatedAt, &article.IsActive); err != nil {
		return nil, fmt.Errorf("Scan: %w", err)
	}
	article.Description = description.String
	article.Content = content.String
	article.ImageURL = imageURL.String
	article.SourceName = sourceName.String
	return &article, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
