package news

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"medico-news/internal/domain/entity"
	"medico-news/internal/handler/http/requestid"
	"medico-news/internal/handler/http/respond"
	"medico-news/internal/observability/logging"
	newsUC "medico-news/internal/usecase/news"
)

type ListHandler struct {
	Svc    *newsUC.Service
	Logger *slog.Logger
}

// ServeHTTP ニュース一覧取得
// 最新のアクティブな記事を公開日の降順で返す。limit クエリで件数を絞れる。
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			logger.Warn("invalid limit parameter",
				"limit", raw,
				"request_id", reqID)
			respond.SafeError(w, http.StatusBadRequest, newsUC.ErrInvalidLimit)
			return
		}
		limit = parsed
	}

	articles, err := h.Svc.Latest(ctx, limit)
	if err != nil {
		logger.Error("failed to list news",
			"error", err.Error(),
			"request_id", reqID)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(articles))
	for _, a := range articles {
		dtos = append(dtos, fromEntity(a))
	}

	logger.Info("news list request",
		"returned_count", len(dtos),
		"duration_ms", time.Since(startTime).Milliseconds(),
		"request_id", reqID)

	respond.JSON(w, http.StatusOK, dtos)
}

// fromEntity converts a domain article into its transport shape.
func fromEntity(a *entity.NewsArticle) DTO {
	return DTO{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		ImageURL:    a.ImageURL,
		SourceURL:   a.SourceURL,
		SourceName:  a.SourceName,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		IsActive:    a.IsActive,
	}
}
