package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/render"
)

// Realm is advertised in the WWW-Authenticate challenge.
const Realm = "blog-api"

// CredentialVerifier resolves Basic credentials to a user.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (models.User, error)
}

// RequireBasicAuth is middleware that verifies HTTP Basic credentials on every
// request and injects the resolved user into the request context. Nothing is
// cached between requests.
func RequireBasicAuth(verifier CredentialVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			user, err := verifier.Verify(r.Context(), username, password)
			if errors.Is(err, auth.ErrInvalidCredentials) {
				logger.InfoContext(r.Context(), "authentication failed", slog.String("username", username))
				unauthorized(w)
				return
			}
			if err != nil {
				render.InternalError(w, r, logger, "verify credentials", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`", charset="UTF-8"`)
	render.Error(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
}
