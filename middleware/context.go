package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/shared"
)

// Context key type to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the caller's session
	SessionKey contextKey = "session"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	return shared.RequestID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return shared.WithRequestID(ctx, requestID)
}

// GetSessionFromContext retrieves the session from context. A request that
// never passed through LoadSession is anonymous.
func GetSessionFromContext(ctx context.Context) auth.Session {
	if s, ok := ctx.Value(SessionKey).(auth.Session); ok {
		return s
	}
	return auth.Anonymous()
}

// WithSession adds a session to the context
func WithSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session.Normalize())
}

// RequestContext copies chi's request ID into the request context so that
// packages without a chi dependency can log it. Mount after chi's RequestID.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			r = r.WithContext(WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
