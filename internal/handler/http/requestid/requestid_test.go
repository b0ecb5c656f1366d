package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-7")
	if got := FromContext(ctx); got != "req-7" {
		t.Errorf("FromContext = %q, want %q", got, "req-7")
	}

	// 未設定なら空文字
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext on empty context = %q, want \"\"", got)
	}
}

func TestMiddleware_GeneratesID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	if seen == "" {
		t.Fatal("no request ID in context")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated ID %q is not a UUID: %v", seen, err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
}

// 既存の X-Request-ID はそのまま伝搬する
func TestMiddleware_PropagatesExistingID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-123")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "upstream-id-123" {
		t.Errorf("context ID = %q, want upstream-id-123", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "upstream-id-123" {
		t.Errorf("response header = %q", got)
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	ids := make(map[string]bool)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[FromContext(r.Context())] = true
	}))

	for i := 0; i < 5; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if len(ids) != 5 {
		t.Errorf("unique IDs = %d, want 5", len(ids))
	}
}
