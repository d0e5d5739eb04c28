package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/rental-portal/internal/auth"
	"go.uber.org/zap"
)

// MockSessionReader is a mock implementation of auth.SessionReader
type MockSessionReader struct {
	mock.Mock
}

func (m *MockSessionReader) ReadSession(ctx context.Context, token string) (auth.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Session), args.Error(1)
}

func newSessionMiddleware(reader auth.SessionReader) *SessionMiddleware {
	logger := zap.NewNop()
	return NewSessionMiddleware(auth.NewInspector(reader, logger), logger)
}

func TestLoadSession(t *testing.T) {
	t.Run("bearer token resolves a session", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("ReadSession", mock.Anything, "valid-token").Return(auth.NewSession("u-1", auth.RoleLandlord), nil)

		var got auth.Session
		handler := newSessionMiddleware(reader).LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetSessionFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/landlord-dashboard", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, auth.NewSession("u-1", auth.RoleLandlord), got)
		reader.AssertExpectations(t)
	})

	t.Run("session cookie is used without a header", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("ReadSession", mock.Anything, "cookie-token").Return(auth.NewSession("u-2", auth.RoleTenant), nil)

		var got auth.Session
		handler := newSessionMiddleware(reader).LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetSessionFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, auth.RoleTenant, got.Role)
	})

	t.Run("invalid token continues as anonymous", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("ReadSession", mock.Anything, "expired").Return(auth.Anonymous(), errors.New("token expired"))

		called := false
		handler := newSessionMiddleware(reader).LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			assert.False(t, GetSessionFromContext(r.Context()).Authenticated)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer expired")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no token never reaches the reader", func(t *testing.T) {
		reader := new(MockSessionReader)
		handler := newSessionMiddleware(reader).LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		reader.AssertNotCalled(t, "ReadSession", mock.Anything, mock.Anything)
	})
}

func TestRequestContext(t *testing.T) {
	var got string
	handler := chimw.RequestID(RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestIDFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimw.RequestIDHeader, "req-abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-abc", got)
}

func TestWithSessionNormalizes(t *testing.T) {
	ctx := WithSession(context.Background(), auth.Session{Authenticated: false, Role: auth.RoleAdmin, Subject: "x"})
	assert.Equal(t, auth.Anonymous(), GetSessionFromContext(ctx))
	assert.Equal(t, auth.Anonymous(), GetSessionFromContext(context.Background()))
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		cookieName    string
		cookieValue   string
		expectedToken string
	}{
		{
			name:          "valid Bearer token in header",
			authHeader:    "Bearer valid-token-123",
			expectedToken: "valid-token-123",
		},
		{
			name:          "Bearer with lowercase",
			authHeader:    "bearer valid-token-123",
			expectedToken: "valid-token-123",
		},
		{
			name:          "token from auth_token cookie when no header",
			cookieName:    "auth_token",
			cookieValue:   "cookie-token-value",
			expectedToken: "cookie-token-value",
		},
		{
			name:          "token from session cookie",
			cookieName:    "session",
			cookieValue:   "session-token",
			expectedToken: "session-token",
		},
		{
			name:          "Authorization header takes precedence over cookie",
			authHeader:    "Bearer header-token",
			cookieName:    "auth_token",
			cookieValue:   "cookie-token",
			expectedToken: "header-token",
		},
		{
			name:          "missing both returns empty",
			expectedToken: "",
		},
		{
			name:          "wrong scheme falls back to cookie",
			authHeader:    "Basic token",
			cookieName:    "auth_token",
			cookieValue:   "cookie-token",
			expectedToken: "cookie-token",
		},
		{
			name:          "empty Bearer token falls back to cookie",
			authHeader:    "Bearer ",
			cookieName:    "auth_token",
			cookieValue:   "cookie-token",
			expectedToken: "cookie-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: tt.cookieName, Value: tt.cookieValue})
			}

			assert.Equal(t, tt.expectedToken, extractToken(req))
		})
	}
}
