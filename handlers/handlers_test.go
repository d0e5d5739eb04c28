package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/upb/rental-portal/app"
	"github.com/upb/rental-portal/config"
	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/policy"
	"github.com/upb/rental-portal/middleware"
	"go.uber.org/zap"
)

func newTestDeps(t *testing.T) *app.Dependencies {
	t.Helper()
	engine, err := policy.Default()
	require.NoError(t, err)
	return app.NewTestDependencies(&config.Config{Environment: "test"}, engine, nil, zap.NewNop())
}

func withSession(r *http.Request, s auth.Session) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), s))
}
