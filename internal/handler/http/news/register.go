package news

import (
	"log/slog"
	"net/http"

	hhttp "medico-news/internal/handler/http"
	newsUC "medico-news/internal/usecase/news"
)

// Register registers all news-related HTTP handlers with the given mux.
// It sets up routes for listing and reading articles plus the pipeline
// maintenance endpoints used by operators and the storefront frontend.
//
// The refresh and clear-static endpoints hit external feeds and the
// database hard, so they go through the supplied rate limiter. A nil
// limiter registers them unprotected (tests).
func Register(mux *http.ServeMux, svc *newsUC.Service, logger *slog.Logger, limiter *hhttp.RateLimiter) {
	guard := func(h http.Handler) http.Handler {
		if limiter == nil {
			return h
		}
		return limiter.Limit(h)
	}

	mux.Handle("GET    /api/news", ListHandler{Svc: svc, Logger: logger})
	mux.Handle("POST   /api/news/refresh", guard(RefreshHandler{Svc: svc, Logger: logger}))
	mux.Handle("POST   /api/news/clear-static", guard(ClearStaticHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET    /api/news/", GetHandler{Svc: svc})
}
