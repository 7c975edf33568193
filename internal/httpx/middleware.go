package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/auth"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// requestLogger writes one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("http request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// TokenParser is implemented by *auth.Issuer.
type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// authenticate resolves the bearer token into an auth.Identity on the
// request context. Requests without a valid token are rejected.
func authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeError(w, r, apperr.Unauthorized("missing bearer token"))
				return
			}
			id, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func requireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, r, apperr.Unauthorized("missing identity"))
				return
			}
			if id.Role != role {
				writeError(w, r, apperr.Forbidden("requires role %s", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// businessID is the tenant of the authenticated caller. Routes using it
// sit behind requireRole(auth.RoleBusiness).
func businessID(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.BusinessID
}
