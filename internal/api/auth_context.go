package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookprepper/bookprepper-server/internal/auth"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/http/response"
	"github.com/bookprepper/bookprepper-server/internal/logger"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// identityKey is the context key for the verified caller.
const identityKey ctxKey = "identity"

// GetIdentity returns the verified caller from context.
// Returns 401 error if the request carried no valid token.
func GetIdentity(ctx context.Context) (*auth.Identity, error) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	if !ok || id == nil || id.UserID == "" {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	return id, nil
}

// GetUserID returns the authenticated user ID from context.
func GetUserID(ctx context.Context) (string, error) {
	id, err := GetIdentity(ctx)
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

func setIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// authMiddleware validates Bearer tokens and stores the identity in context.
// Requests without a token continue anonymously; handlers use GetIdentity
// to require one. A token that is present but invalid is rejected here so
// clients learn their session expired instead of seeing anonymous data.
func authMiddleware(verifier *auth.Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				response.Unauthorized(w, "Invalid authorization header format", log)
				return
			}

			id, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				log.Debug("rejected token", "error", err, "path", r.URL.Path)
				response.Unauthorized(w, "Invalid or expired token", log)
				return
			}

			ctx := setIdentity(r.Context(), id)
			ctx = logger.IntoContext(ctx, "user_id", id.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser returns the caller and makes sure a user row exists for them.
// Returns 401 if not authenticated.
func (s *Server) RequireUser(ctx context.Context) (*auth.Identity, error) {
	id, err := GetIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.User.EnsureUser(ctx, id.UserID, id.Email, id.DisplayName); err != nil {
		return nil, err
	}
	return id, nil
}

// RequireAdmin validates the caller is authenticated and is a moderator.
func (s *Server) RequireAdmin(ctx context.Context) (*auth.Identity, error) {
	id, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if !id.IsAdmin {
		return nil, domainerrors.Forbidden("Admin access required")
	}
	return id, nil
}
