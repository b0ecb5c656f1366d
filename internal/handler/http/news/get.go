package news

import (
	"errors"
	"net/http"

	"medico-news/internal/handler/http/pathutil"
	"medico-news/internal/handler/http/respond"
	newsUC "medico-news/internal/usecase/news"
)

type GetHandler struct{ Svc *newsUC.Service }

// ServeHTTP ニュース記事詳細取得
// 指定されたIDの記事を返す。存在しない場合は 404。
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/api/news/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	article, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, newsUC.ErrInvalidArticleID) {
			code = http.StatusBadRequest
		} else if errors.Is(err, newsUC.ErrArticleNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, fromEntity(article))
}
