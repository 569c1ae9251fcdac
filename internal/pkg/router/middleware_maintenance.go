package router

import (
	"net/http"
	"strconv"

	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

// middlewareMaintenance answers 503 for the routes listed in
// app.maintenance.endpoints. The list is read once at startup.
func middlewareMaintenance(cfg config.Config) Middleware {
	var entries []string
	var retryAfter int
	if cfg != nil {
		entries = cfg.GetArray("app.maintenance.endpoints")
		retryAfter = cfg.GetInt("app.maintenance.retry_after_seconds")
	}
	blocked := newRouteSet(entries)

	return func(next http.Handler) http.Handler {
		if blocked.empty() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !blocked.has(r.Method, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			writeJSON(w, errorResponse{Message: "service is under maintenance", Reason: goerror.ReasonMaintenance}, http.StatusServiceUnavailable)
		})
	}
}
