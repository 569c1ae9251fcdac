package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/shandysiswandi/watercan/internal/pkg/jwt"
)

// middlewareAuthentication answers 401 when no bearer credential is presented
// and 403 when the credential fails verification.
func middlewareAuthentication(verifier jwt.JWT, public routeSet) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public.has(r.Method, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			p := strings.Fields(r.Header.Get("Authorization"))
			if len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(p[1])
			if err != nil {
				slog.WarnContext(r.Context(), "rejected session token", "error", err)
				writeJSON(w, errorResponse{Message: "Invalid or expired token"}, http.StatusForbidden)
				return
			}

			if setter, ok := w.(interface{ SetKind(string) }); ok {
				setter.SetKind(claims.Kind)
			}

			ctx := jwt.SetAuth(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// middlewareAuthorization checks the session kind against the route with the
// casbin policy. Public routes and a nil enforcer skip the check.
func middlewareAuthorization(enforcer *casbin.Enforcer, public routeSet) Middleware {
	return func(next http.Handler) http.Handler {
		if enforcer == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := matchedRoutePath(r)
			if public.has(r.Method, path) {
				next.ServeHTTP(w, r)
				return
			}

			clm := jwt.GetAuth(r.Context())
			if clm == nil {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			allowed, err := enforcer.Enforce(clm.Kind, r.URL.Path, r.Method)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to evaluate access policy", "kind", clm.Kind, "path", path, "error", err)
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
				return
			}
			if !allowed {
				writeJSON(w, errorResponse{Message: "You do not have access to this resource"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
