package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
)

// AdminAuth guards administrative endpoints with a bearer token checked
// against a bcrypt hash. With no hash configured the endpoints are closed.
func AdminAuth(tokenHash string, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) func(next http.Handler) http.Handler {
	hash := []byte(tokenHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if len(hash) == 0 {
				logger.WarnContext(ctx, "admin endpoint disabled",
					slog.String("path", r.URL.Path),
					slog.String("request_id", GetReqID(ctx)),
				)
				errorHandler.HandleError(w, r, apperrors.ErrForbidden)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "missing or malformed authorization header",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="ibex35-admin"`)
				errorHandler.HandleError(w, r, apperrors.ErrUnauthorized)
				return
			}

			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				logger.WarnContext(ctx, "admin authentication failed",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="ibex35-admin", error="invalid_token"`)
				errorHandler.HandleError(w, r, apperrors.ErrUnauthorized)
				return
			}

			logger.DebugContext(ctx, "admin authenticated", slog.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
