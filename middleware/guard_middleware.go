package middleware

import (
	"net/http"

	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/guard"
	"github.com/upb/rental-portal/internal/policy"
	"github.com/upb/rental-portal/utils"
)

// GuardMiddleware enforces route policies before a handler runs. It must be
// mounted after SessionMiddleware.LoadSession.
type GuardMiddleware struct {
	guard *guard.Guard
}

// NewGuardMiddleware creates a new GuardMiddleware
func NewGuardMiddleware(g *guard.Guard) *GuardMiddleware {
	return &GuardMiddleware{guard: g}
}

// Pages guards page navigations. A denied request is answered with a 302 to
// the redirect target and the protected handler never runs.
func (m *GuardMiddleware) Pages(required auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			d := m.guard.Evaluate(ctx, r.URL.Path, GetSessionFromContext(ctx), required)
			if !d.Render {
				w.Header().Set("Cache-Control", "no-store")
				http.Redirect(w, r, d.RedirectTarget, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// API guards JSON endpoints. Denials are reported as 401 (no session) or
// 403 (insufficient role) with the redirect target a client should follow.
func (m *GuardMiddleware) API(required auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			d := m.guard.Evaluate(ctx, r.URL.Path, GetSessionFromContext(ctx), required)
			if d.Render {
				next.ServeHTTP(w, r)
				return
			}

			details := map[string]interface{}{
				"verdict":         d.Verdict.Kind,
				"reason":          d.Verdict.Reason,
				"redirect_target": d.RedirectTarget,
			}
			if d.Verdict.Kind == policy.VerdictRedirectToLogin {
				_ = utils.WriteUnauthorized(w, "", details)
				return
			}
			_ = utils.WriteError(w, http.StatusForbidden, "Insufficient permissions", details)
		})
	}
}
