package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/untangled/link-server-go/internal/errors"
	"github.com/untangled/link-server-go/internal/httputil"
	"github.com/untangled/link-server-go/internal/token"
)

type contextKey string

const UserIDContextKey contextKey = "userId"

// GetUserID returns the authenticated user id stored by AuthMiddleware.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDContextKey).(int64)
	return id, ok
}

type AuthMiddleware struct {
	issuer token.Issuer
}

func NewAuthMiddleware(issuer token.Issuer) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := extractToken(r)
		if bearer == "" {
			httputil.WriteError(w, apperrors.Unauthorized("Missing authentication token"))
			return
		}

		userID, err := m.issuer.Verify(bearer)
		if err != nil {
			log.Warn().Err(err).Msg("auth middleware: token rejected")
			httputil.WriteError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
