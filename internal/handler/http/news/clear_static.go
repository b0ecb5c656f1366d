package news

import (
	"log/slog"
	"net/http"

	"medico-news/internal/handler/http/requestid"
	"medico-news/internal/handler/http/respond"
	"medico-news/internal/observability/logging"
	newsUC "medico-news/internal/usecase/news"
)

type ClearStaticHandler struct {
	Svc    *newsUC.Service
	Logger *slog.Logger
}

// ServeHTTP シードデータ削除
// ストアに残っているプレースホルダ記事を削除する。
func (h ClearStaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	deleted, err := h.Svc.ClearStaticSamples(ctx)
	if err != nil {
		logger.Error("failed to clear static samples",
			"error", err.Error(),
			"request_id", reqID)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("static sample articles removed",
		"deleted", deleted,
		"request_id", reqID)

	respond.JSON(w, http.StatusOK, ClearStaticResponse{
		Message: "Static sample articles removed",
		Deleted: deleted,
	})
}
