package policy

import (
	"github.com/upb/rental-portal/internal/auth"
)

// Engine combines the route table with a session into a Verdict.
type Engine struct {
	table      *Table
	login      LoginDestinations
	dashboards DashboardDestinations
}

// NewEngine creates an Engine. All arguments are treated as read-only.
func NewEngine(table *Table, login LoginDestinations, dashboards DashboardDestinations) *Engine {
	return &Engine{
		table:      table,
		login:      login,
		dashboards: dashboards,
	}
}

// Decide returns the verdict for session requesting path. It is a pure
// function of its arguments and the engine's configuration.
func (e *Engine) Decide(path string, session auth.Session) Verdict {
	session = session.Normalize()
	res := e.table.Resolve(path)

	v := e.decide(path, session, res.Policy)
	v.UnknownRoute = res.Fallback
	return v
}

func (e *Engine) decide(path string, session auth.Session, p RoutePolicy) Verdict {
	if p.Public {
		return allow(ReasonPublic)
	}
	if !session.Authenticated {
		return redirectToLogin(e.login.Classify(path))
	}
	if session.Malformed() {
		return redirectToDashboard(session.Role, ReasonMalformedSession)
	}
	if session.Role.IsAdmin() {
		return allow(ReasonAdminOverride)
	}
	if p.Permits(session.Role) {
		return allow(ReasonRoleMatch)
	}
	return redirectToDashboard(session.Role, ReasonRoleMismatch)
}

// Require applies an explicit per-page role requirement on top of v. Both v
// and the requirement must pass for the result to allow. An empty required
// role leaves v unchanged.
func (e *Engine) Require(v Verdict, path string, session auth.Session, required auth.Role) Verdict {
	if required == auth.RoleNone || !v.Allowed() {
		return v
	}

	session = session.Normalize()
	switch {
	case !session.Authenticated:
		out := redirectToLogin(e.login.Classify(path))
		out.UnknownRoute = v.UnknownRoute
		return out
	case session.Malformed():
		out := redirectToDashboard(session.Role, ReasonMalformedSession)
		out.UnknownRoute = v.UnknownRoute
		return out
	case session.Role.Satisfies(required):
		if session.Role.IsAdmin() {
			v.Reason = ReasonAdminOverride
		} else if v.Reason == ReasonPublic {
			v.Reason = ReasonRoleMatch
		}
		return v
	}

	out := redirectToDashboard(session.Role, ReasonRoleMismatch)
	out.UnknownRoute = v.UnknownRoute
	return out
}

// Target returns the redirect route for v, or "" for Allow.
func (e *Engine) Target(v Verdict) string {
	switch v.Kind {
	case VerdictRedirectToLogin:
		return e.login.Route(v.Category)
	case VerdictRedirectToDashboard:
		return e.dashboards.Route(v.Role)
	}
	return ""
}

// Resolve exposes the table lookup for diagnostics.
func (e *Engine) Resolve(path string) Resolution {
	return e.table.Resolve(path)
}

// Table returns the engine's route table.
func (e *Engine) Table() *Table {
	return e.table
}
