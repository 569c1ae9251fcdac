package router

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/ratelimit"
)

// RateLimit limits a route per client IP. It relies on middlewareIP having
// normalized r.RemoteAddr. Limiter failures are logged and let the request through.
func RateLimit(limiter ratelimit.Limiter, name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			info, err := limiter.Allow(r.Context(), name+":"+ip)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to check rate limit", "limiter", name, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

			if !info.Allowed {
				retryAfter := int64(math.Ceil(info.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				slog.WarnContext(r.Context(), "rate limit exceeded", "limiter", name, "ip", ip)

				writeError(w, goerror.NewRateLimited(map[string]any{"retry_after_seconds": retryAfter}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
