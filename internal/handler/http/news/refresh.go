package news

import (
	"errors"
	"log/slog"
	"net/http"

	"medico-news/internal/handler/http/requestid"
	"medico-news/internal/handler/http/respond"
	"medico-news/internal/observability/logging"
	newsUC "medico-news/internal/usecase/news"
)

type RefreshHandler struct {
	Svc    *newsUC.Service
	Logger *slog.Logger
}

// ServeHTTP ニュース手動更新
// 全ソースを集約し直して記事セットを入れ替える。実行中の更新がある場合は 409。
func (h RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	stats, err := h.Svc.Refresh(ctx)
	if err != nil {
		if errors.Is(err, newsUC.ErrRefreshInProgress) {
			respond.JSON(w, http.StatusConflict, map[string]string{
				"error": newsUC.ErrRefreshInProgress.Error(),
			})
			return
		}
		logger.Error("news refresh failed",
			"error", err.Error(),
			"request_id", reqID)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("manual news refresh",
		"written", stats.Written,
		"skipped", stats.Skipped,
		"source_errors", len(stats.SourceErrors),
		"duration_ms", stats.Duration.Milliseconds(),
		"request_id", reqID)

	respond.JSON(w, http.StatusOK, RefreshResponse{
		Message: "News refreshed successfully",
		Count:   stats.Written,
	})
}
