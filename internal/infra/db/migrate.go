package db

import (
	"database/sql"
)

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS news_articles (
    id           SERIAL PRIMARY KEY,
    title        VARCHAR(500) NOT NULL,
    description  TEXT,
    content      TEXT,
    image_url    VARCHAR(500),
    source_url   VARCHAR(500) NOT NULL,
    source_name  VARCHAR(100),
    published_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ DEFAULT now(),
    is_active    BOOLEAN DEFAULT TRUE
)`); err != nil {
		return err
	}

	// ORDER BY published_at DESC で使用（一覧クエリ全てで使用）
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_news_articles_published_at ON news_articles(published_at DESC)`,
		// アクティブ記事絞り込み用
		`CREATE INDEX IF NOT EXISTS idx_news_articles_is_active ON news_articles(is_active) WHERE is_active = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
