package repository

import (
	"context"

	"medico-news/internal/domain/entity"
)

type NewsArticleRepository interface {
	// ListActive retrieves up to limit active articles ordered by
	// published_at DESC, excluding seeded static-sample rows.
	ListActive(ctx context.Context, limit int) ([]*entity.NewsArticle, error)
	Get(ctx context.Context, id int64) (*entity.NewsArticle, error)
	// ReplaceAll atomically swaps the stored article set for the given
	// batch: delete everything, insert the batch, all in one transaction.
	// Callers never observe the intermediate empty state.
	ReplaceAll(ctx context.Context, articles []*entity.NewsArticle) error
	// DeleteStaticSamples removes seeded placeholder rows and reports
	// how many were deleted.
	DeleteStaticSamples(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}
