package router

import (
	"net/http"

	"github.com/shandysiswandi/watercan/internal/pkg/stacktrace"
)

// middlewareRecoverer answers 500 with the usual error envelope when a
// handler panics. http.ErrAbortHandler is re-raised so net/http can drop the
// connection quietly.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:errorlint // sentinel value passed to panic
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stacktrace.LogPanic(r.Context(), "panic on the server", rvr, "method", r.Method, "path", r.URL.Path)
			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
