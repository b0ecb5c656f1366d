// Package respond writes JSON responses for the news API. Error responses
// are filtered so storage or feed internals never reach API clients.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v as a JSON response with the given status code.
// A nil v writes headers only.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダ送信済みのためログに残すしかない
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// safeFragments marks error messages that are already phrased for API
// clients, such as validation and not-found errors. Anything else is
// treated as internal.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
	"rate limit",
}

// SafeError writes err as a JSON error response. Messages matching a safe
// fragment pass through as-is; everything else, and every 5xx regardless of
// message, is logged with credentials masked and replaced by a generic
// "internal server error" body.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	safe := false
	lower := strings.ToLower(msg)
	for _, fragment := range safeFragments {
		if strings.Contains(lower, fragment) {
			safe = true
			break
		}
	}
	if code >= 500 {
		safe = false
	}

	if !safe {
		// 機密情報をマスクしてログ出力
		slog.Default().Error("internal server error",
			slog.String("status", http.StatusText(code)),
			slog.Int("code", code),
			slog.String("error", SanitizeError(err)))
		JSON(w, code, map[string]string{"error": "internal server error"})
		return
	}
	JSON(w, code, map[string]string{"error": msg})
}
