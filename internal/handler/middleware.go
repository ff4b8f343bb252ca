package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/port"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	profileKey  contextKey = "profile"
)

// sessionCookieName is the cookie the frontend sets from the auth provider's
// access token.
const sessionCookieName = "sb-access-token"

// sessionToken extracts the session token from the request: cookie first,
// Authorization header as a fallback for API clients. Absent token is "",
// which verifiers treat as no session.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// SessionMiddleware resolves the session token and injects the Identity into
// the request context. Requests without a valid session get 401; the
// bootstrap route stays outside this middleware because it answers those
// with a redirect state instead.
func SessionMiddleware(verifier port.SessionVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.Verify(r.Context(), sessionToken(r))
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			if identity == nil {
				logger.Debug("session: no valid session",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "unauthenticated", "missing or invalid session")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileMiddleware loads the caller's profile and injects it into the
// context. An identity without a profile has not completed setup and may not
// use the dashboard operations behind this middleware.
func ProfileMiddleware(profiles port.ProfileStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "missing or invalid session")
				return
			}

			profile, err := profiles.GetProfile(r.Context(), identity.ID)
			if err != nil {
				var notFound *domain.ErrNotFound
				if errors.As(err, &notFound) {
					writeError(w, http.StatusForbidden, "forbidden", "complete setup before using the dashboard")
					return
				}
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), profileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	v, _ := ctx.Value(identityKey).(*domain.Identity)
	return v
}

// ProfileFromContext extracts the caller's profile from context.
func ProfileFromContext(ctx context.Context) *domain.Profile {
	v, _ := ctx.Value(profileKey).(*domain.Profile)
	return v
}
