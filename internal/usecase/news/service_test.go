package news_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"medico-news/internal/config"
	"medico-news/internal/domain/entity"
	newsUC "medico-news/internal/usecase/news"
)

/* ───────── スタブ実装 ───────── */

// 最小限のインメモリ NewsArticleRepository
type stubRepo struct {
	mu       sync.Mutex
	articles []*entity.NewsArticle
	replaces int
	counts   int
	err      error // 強制的にエラーを返したいとき用
}

func (s *stubRepo) ListActive(_ context.Context, limit int) ([]*entity.NewsArticle, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.articles) {
		limit = len(s.articles)
	}
	return s.articles[:limit], nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (*entity.NewsArticle, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (s *stubRepo) ReplaceAll(_ context.Context, articles []*entity.NewsArticle) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = articles
	s.replaces++
	return nil
}

func (s *stubRepo) DeleteStaticSamples(_ context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*entity.NewsArticle
	var removed int64
	for _, a := range s.articles {
		if a.IsStaticSample() {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.articles = kept
	return removed, nil
}

func (s *stubRepo) Count(_ context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts++
	return int64(len(s.articles)), nil
}

// stubFetcher returns canned items per URL.
type stubFetcher struct {
	items map[string][]newsUC.RawItem
	errs  map[string]error

	mu        sync.Mutex
	block     chan struct{} // non-nil なら Fetch をブロックする
	started   chan struct{} // 最初の Fetch 突入を通知
	startOnce sync.Once
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]newsUC.RawItem, error) {
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.items[url], nil
}

func sources(n int) []config.FeedSource {
	out := make([]config.FeedSource, n)
	for i := range out {
		out[i] = config.FeedSource{
			Name: fmt.Sprintf("Source %d", i+1),
			URL:  fmt.Sprintf("https://feeds.example.org/%d", i+1),
		}
	}
	return out
}

// feedItems generates n items for one source, newest first, each one hour
// apart starting at base.
func feedItems(source string, n int, base time.Time) []newsUC.RawItem {
	out := make([]newsUC.RawItem, n)
	for i := range out {
		pub := base.Add(-time.Duration(i) * time.Hour)
		out[i] = newsUC.RawItem{
			Title:     fmt.Sprintf("%s item %d", source, i+1),
			Link:      fmt.Sprintf("https://news.example.org/%s/%d", source, i+1),
			Published: &pub,
		}
	}
	return out
}

/* ───────── 1. 集約: ソート順 ───────── */

func TestService_Aggregate_sortedNewestFirst(t *testing.T) {
	srcs := sources(2)
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{items: map[string][]newsUC.RawItem{
		srcs[0].URL: feedItems("a", 3, base),
		srcs[1].URL: feedItems("b", 3, base.Add(30*time.Minute)),
	}}
	svc := newsUC.NewService(&stubRepo{}, fetcher, srcs, newsUC.DefaultConfig())

	batch, skipped, srcErrs := svc.Aggregate(context.Background())
	if len(srcErrs) != 0 {
		t.Fatalf("unexpected source errors: %v", srcErrs)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(batch) != 6 {
		t.Fatalf("batch size = %d, want 6", len(batch))
	}
	for i := 1; i < len(batch); i++ {
		if batch[i].PublishedAt.After(batch[i-1].PublishedAt) {
			t.Fatalf("batch not sorted desc at %d: %v after %v",
				i, batch[i].PublishedAt, batch[i-1].PublishedAt)
		}
	}
}

/* ───────── 2. 集約: 上限 ───────── */

func TestService_Aggregate_limits(t *testing.T) {
	srcs := sources(6)
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	items := map[string][]newsUC.RawItem{}
	for i, src := range srcs {
		// 各ソースが上限を超える 8 件を返す
		items[src.URL] = feedItems(src.Name, 8, base.Add(time.Duration(i)*time.Minute))
	}
	fetcher := &stubFetcher{items: items}

	cfg := newsUC.Config{PerSourceLimit: 5, TotalLimit: 20, FetchParallelism: 4}
	svc := newsUC.NewService(&stubRepo{}, fetcher, srcs, cfg)

	batch, _, srcErrs := svc.Aggregate(context.Background())
	if len(srcErrs) != 0 {
		t.Fatalf("unexpected source errors: %v", srcErrs)
	}
	// 6 ソース × 5 件 = 30 件 → 全体上限 20 で切られる
	if len(batch) != 20 {
		t.Fatalf("batch size = %d, want 20", len(batch))
	}
	perSource := map[string]int{}
	for _, a := range batch {
		perSource[a.SourceName]++
	}
	for name, n := range perSource {
		if n > 5 {
			t.Fatalf("source %q contributed %d items, cap is 5", name, n)
		}
	}
}

/* ───────── 3. 集約: ソース分離 ───────── */

func TestService_Aggregate_sourceFailureIsolated(t *testing.T) {
	srcs := sources(3)
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{
		items: map[string][]newsUC.RawItem{
			srcs[0].URL: feedItems("a", 2, base),
			srcs[2].URL: feedItems("c", 2, base),
		},
		errs: map[string]error{
			srcs[1].URL: errors.New("connection refused"),
		},
	}
	svc := newsUC.NewService(&stubRepo{}, fetcher, srcs, newsUC.DefaultConfig())

	batch, _, srcErrs := svc.Aggregate(context.Background())
	if len(batch) != 4 {
		t.Fatalf("batch size = %d, want 4", len(batch))
	}
	if len(srcErrs) != 1 {
		t.Fatalf("source errors = %d, want 1", len(srcErrs))
	}
	if srcErrs[0].SourceName != srcs[1].Name {
		t.Errorf("failed source = %q, want %q", srcErrs[0].SourceName, srcs[1].Name)
	}
}

/* ───────── 4. 集約: 不正アイテムはスキップ ───────── */

func TestService_Aggregate_skipsMalformedItems(t *testing.T) {
	srcs := sources(1)
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	items := feedItems("a", 2, base)
	items = append(items, newsUC.RawItem{Title: "", Link: "https://news.example.org/x"})
	items = append(items, newsUC.RawItem{Title: "no link"})
	fetcher := &stubFetcher{items: map[string][]newsUC.RawItem{srcs[0].URL: items}}

	svc := newsUC.NewService(&stubRepo{}, fetcher, srcs, newsUC.DefaultConfig())

	batch, skipped, _ := svc.Aggregate(context.Background())
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch))
	}
	if skipped != 2 {
		t.Fatalf("skipped = %d, want 2", skipped)
	}
}

/* ───────── 5. Refresh: 正常フロー ───────── */

func TestService_Refresh_replacesBatch(t *testing.T) {
	srcs := sources(2)
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{items: map[string][]newsUC.RawItem{
		srcs[0].URL: feedItems("a", 3, base),
		srcs[1].URL: feedItems("b", 2, base),
	}}
	repo := &stubRepo{articles: []*entity.NewsArticle{{ID: 1, Title: "stale"}}}

	svc := newsUC.NewService(repo, fetcher, srcs, newsUC.DefaultConfig())

	stats, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh err=%v", err)
	}
	if stats.Written != 5 {
		t.Errorf("Written = %d, want 5", stats.Written)
	}
	if repo.replaces != 1 {
		t.Errorf("ReplaceAll calls = %d, want 1", repo.replaces)
	}
	if len(repo.articles) != 5 {
		t.Errorf("stored = %d, want 5", len(repo.articles))
	}
	// 成功した書き込みの後はストアの実数を読み直してゲージに反映する
	if repo.counts != 1 {
		t.Errorf("Count calls = %d, want 1", repo.counts)
	}
}

/* ───────── 6. Refresh: 全滅時は前回分を残す ───────── */

func TestService_Refresh_allSourcesFailKeepsPrevious(t *testing.T) {
	srcs := sources(2)
	fetcher := &stubFetcher{errs: map[string]error{
		srcs[0].URL: errors.New("timeout"),
		srcs[1].URL: errors.New("bad xml"),
	}}
	previous := []*entity.NewsArticle{{ID: 1, Title: "previous batch"}}
	repo := &stubRepo{articles: previous}

	svc := newsUC.NewService(repo, fetcher, srcs, newsUC.DefaultConfig())

	stats, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh err=%v", err)
	}
	if stats.Written != 0 {
		t.Errorf("Written = %d, want 0", stats.Written)
	}
	if len(stats.SourceErrors) != 2 {
		t.Errorf("source errors = %d, want 2", len(stats.SourceErrors))
	}
	if repo.replaces != 0 {
		t.Errorf("ReplaceAll calls = %d, want 0", repo.replaces)
	}
	if len(repo.articles) != 1 || repo.articles[0].Title != "previous batch" {
		t.Errorf("previous batch not preserved: %#v", repo.articles)
	}
}

/* ───────── 7. Refresh: 書き込み失敗 ───────── */

func TestService_Refresh_writeFailure(t *testing.T) {
	srcs := sources(1)
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{items: map[string][]newsUC.RawItem{
		srcs[0].URL: feedItems("a", 2, base),
	}}
	repo := &stubRepo{err: errors.New("deadlock detected")}

	svc := newsUC.NewService(repo, fetcher, srcs, newsUC.DefaultConfig())

	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Fatalf("want error, got nil")
	}
}

/* ───────── 8. Refresh: 直列化 ───────── */

func TestService_Refresh_inProgress(t *testing.T) {
	srcs := sources(1)
	block := make(chan struct{})
	started := make(chan struct{})
	fetcher := &stubFetcher{
		items: map[string][]newsUC.RawItem{
			srcs[0].URL: feedItems("a", 1, time.Now()),
		},
		block:   block,
		started: started,
	}
	svc := newsUC.NewService(&stubRepo{}, fetcher, srcs, newsUC.DefaultConfig())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		done <- err
	}()

	// 1 本目がフェッチでブロックするのを待ってから 2 本目を投げる
	<-started
	if _, err := svc.Refresh(context.Background()); !errors.Is(err, newsUC.ErrRefreshInProgress) {
		t.Fatalf("want ErrRefreshInProgress, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first Refresh err=%v", err)
	}
}

/* ───────── 9. 読み取り系 ───────── */

func TestService_Latest_clampsLimit(t *testing.T) {
	repo := &stubRepo{}
	for i := 0; i < 30; i++ {
		repo.articles = append(repo.articles, &entity.NewsArticle{ID: int64(i + 1), Title: "t"})
	}
	svc := newsUC.NewService(repo, &stubFetcher{}, nil, newsUC.DefaultConfig())

	got, err := svc.Latest(context.Background(), 0)
	if err != nil {
		t.Fatalf("Latest err=%v", err)
	}
	if len(got) != 20 {
		t.Errorf("default limit: got %d, want 20", len(got))
	}

	got, err = svc.Latest(context.Background(), 5)
	if err != nil {
		t.Fatalf("Latest err=%v", err)
	}
	if len(got) != 5 {
		t.Errorf("explicit limit: got %d, want 5", len(got))
	}
}

func TestService_Get(t *testing.T) {
	repo := &stubRepo{articles: []*entity.NewsArticle{{ID: 7, Title: "t"}}}
	svc := newsUC.NewService(repo, &stubFetcher{}, nil, newsUC.DefaultConfig())

	if _, err := svc.Get(context.Background(), 0); !errors.Is(err, newsUC.ErrInvalidArticleID) {
		t.Errorf("want ErrInvalidArticleID, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 99); !errors.Is(err, newsUC.ErrArticleNotFound) {
		t.Errorf("want ErrArticleNotFound, got %v", err)
	}
	got, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got.ID != 7 {
		t.Errorf("ID = %d, want 7", got.ID)
	}
}

func TestService_ClearStaticSamples(t *testing.T) {
	repo := &stubRepo{articles: []*entity.NewsArticle{
		{ID: 1, SourceURL: entity.StaticSamplePrefix + "/seed-1"},
		{ID: 2, SourceURL: "https://news.example.org/real"},
	}}
	svc := newsUC.NewService(repo, &stubFetcher{}, nil, newsUC.DefaultConfig())

	n, err := svc.ClearStaticSamples(context.Background())
	if err != nil {
		t.Fatalf("ClearStaticSamples err=%v", err)
	}
	if n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
	if len(repo.articles) != 1 || repo.articles[0].ID != 2 {
		t.Errorf("remaining articles wrong: %#v", repo.articles)
	}
}
