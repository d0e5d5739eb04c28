package middleware

import (
	"net/http"
	"strings"

	"github.com/upb/rental-portal/internal/auth"
	"go.uber.org/zap"
)

// authTokenCookieName is the cookie name for JWT tokens (Authorization header takes precedence)
// sessionCookieName is set by the hosted login callback
const authTokenCookieName = "auth_token"
const sessionCookieName = "session"

// SessionMiddleware resolves the caller's session for every request
type SessionMiddleware struct {
	inspector *auth.Inspector
	logger    *zap.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(inspector *auth.Inspector, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		inspector: inspector,
		logger:    logger,
	}
}

// LoadSession attaches the caller's session to the request context. It never
// rejects a request: a missing or invalid token yields the anonymous session
// and authorization is left to the guard.
func (m *SessionMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		session := m.inspector.CurrentSession(ctx, extractToken(r))

		m.logger.Debug("session loaded",
			zap.String("request_id", GetRequestIDFromContext(ctx)),
			zap.Bool("authenticated", session.Authenticated),
			zap.String("role", session.Role.String()))

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, session)))
	})
}

// extractToken extracts JWT from cookie ("auth_token") or Authorization header ("Bearer TOKEN").
// Authorization header takes precedence when both are present.
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	for _, name := range []string{authTokenCookieName, sessionCookieName} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
