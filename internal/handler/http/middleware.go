package http

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"medico-news/internal/handler/http/requestid"
	"medico-news/internal/handler/http/respond"
	"medico-news/internal/handler/http/responsewriter"

	"go.opentelemetry.io/otel/trace"
)

// Logging returns middleware that emits one structured log line per request,
// carrying the request ID and the OpenTelemetry trace ID so API logs can be
// correlated with traces.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// ステータスとサイズを拾うためにラップする
			wrapped := responsewriter.Wrap(w)
			next.ServeHTTP(wrapped, r)

			span := trace.SpanFromContext(r.Context())
			duration := time.Since(start)

			logger.Info("request completed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("trace_id", span.SpanContext().TraceID().String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", duration),
				slog.String("duration_ms", fmt.Sprintf("%.2f", duration.Seconds()*1000)),
			)
		})
	}
}

// Recover returns middleware that turns a handler panic into a 500 response
// and a structured log entry with the stack trace.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					respond.SafeError(
						w,
						http.StatusInternalServerError,
						fmt.Errorf("internal error"),
					)

					logger.Error("panic recovered",
						slog.String("request_id", requestid.FromContext(r.Context())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody caps request body size. Oversized bodies fail the first
// read with a 413 via http.MaxBytesReader.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// clientWindow holds the recent request timestamps of one client IP.
type clientWindow struct {
	mu   sync.Mutex
	seen []time.Time
}

// RateLimiter limits requests per client IP over a sliding window. It guards
// the refresh and clear-static endpoints, which hit every configured feed or
// mutate the article table.
type RateLimiter struct {
	windows   sync.Map // map[string]*clientWindow
	limit     int
	window    time.Duration
	cleanMu   sync.Mutex
	lastClean time.Time
}

// NewRateLimiter allows at most limit requests per client within window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		window:    window,
		lastClean: time.Now(),
	}
}

// Limit rejects requests over the per-IP budget with 429 Too Many Requests.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)

		// 古いクライアントのエントリをときどき掃除する
		rl.maybeCleanup()

		if !rl.allow(ip) {
			respond.SafeError(w, http.StatusTooManyRequests, fmt.Errorf("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow checks the sliding window for ip and records the request if allowed.
func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()

	val, _ := rl.windows.LoadOrStore(ip, &clientWindow{
		seen: make([]time.Time, 0, rl.limit),
	})
	cw := val.(*clientWindow)

	cw.mu.Lock()
	defer cw.mu.Unlock()

	// 窓の外に出たタイムスタンプを落とす
	cutoff := now.Add(-rl.window)
	kept := cw.seen[:0]
	for _, ts := range cw.seen {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	cw.seen = kept

	if len(cw.seen) >= rl.limit {
		return false
	}
	cw.seen = append(cw.seen, now)
	return true
}

// maybeCleanup drops idle client entries at most once per cleanup interval
// so the map does not grow without bound.
func (rl *RateLimiter) maybeCleanup() {
	rl.cleanMu.Lock()
	defer rl.cleanMu.Unlock()

	if time.Since(rl.lastClean) < 10*time.Minute {
		return
	}
	rl.lastClean = time.Now()

	// 窓の2倍より古いものしか残っていないクライアントは削除
	cutoff := time.Now().Add(-rl.window * 2)
	rl.windows.Range(func(key, value interface{}) bool {
		cw := value.(*clientWindow)
		cw.mu.Lock()
		idle := true
		for _, ts := range cw.seen {
			if ts.After(cutoff) {
				idle = false
				break
			}
		}
		cw.mu.Unlock()
		if idle {
			rl.windows.Delete(key)
		}
		return true
	})
}

// extractIP resolves the client IP, preferring proxy headers over RemoteAddr.
func extractIP(r *http.Request) string {
	// リバースプロキシ経由なら X-Forwarded-For の先頭がクライアント
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := firstForwardedIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// firstForwardedIP parses the first address of a comma-separated
// X-Forwarded-For value. Returns "" when it is not a valid IP.
func firstForwardedIP(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			if ip := net.ParseIP(s[:i]); ip != nil {
				return ip.String()
			}
			return ""
		}
	}
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return ""
}
