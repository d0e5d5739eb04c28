package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/utils"
)

func TestGuardDecisionHandler(t *testing.T) {
	deps := newTestDeps(t)
	handler := GuardDecisionHandler(deps)

	tests := []struct {
		name       string
		query      string
		session    auth.Session
		wantRender bool
		wantTarget string
		wantReason string
	}{
		{
			name:       "anonymous on admin dashboard",
			query:      "?path=/admin-dashboard",
			session:    auth.Anonymous(),
			wantTarget: "/admin-login",
			wantReason: "unauthenticated",
		},
		{
			name:       "landlord on tenant dashboard",
			query:      "?path=/tenant-dashboard",
			session:    auth.NewSession("l-1", auth.RoleLandlord),
			wantTarget: "/landlord-dashboard",
			wantReason: "role_mismatch",
		},
		{
			name:       "admin on building management",
			query:      "?path=/building-management",
			session:    auth.NewSession("a-1", auth.RoleAdmin),
			wantRender: true,
			wantReason: "admin_override",
		},
		{
			name:       "anonymous on landlord registration",
			query:      "?path=/landlord-registration",
			session:    auth.Anonymous(),
			wantRender: true,
			wantReason: "public",
		},
		{
			name:       "required role is applied",
			query:      "?path=/messages&requiredRole=Landlord",
			session:    auth.NewSession("t-1", auth.RoleTenant),
			wantTarget: "/tenant-dashboard",
			wantReason: "role_mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/guard"+tt.query, nil), tt.session)
			w := httptest.NewRecorder()

			handler(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

			var body struct {
				Data GuardResponse `json:"data"`
			}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantRender, body.Data.Render)
			assert.Equal(t, tt.wantTarget, body.Data.RedirectTarget)
			assert.Equal(t, tt.wantReason, body.Data.Reason)
		})
	}
}

func TestGuardDecisionHandler_InvalidQuery(t *testing.T) {
	deps := newTestDeps(t)
	handler := GuardDecisionHandler(deps)

	for _, query := range []string{"", "?path=", "?path=relative", "?path=/x&requiredRole=owner"} {
		t.Run(query, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest(http.MethodGet, "/api/v1/guard"+query, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, "bad_request", body.Error)
			assert.NotEmpty(t, body.Details)
		})
	}
}
