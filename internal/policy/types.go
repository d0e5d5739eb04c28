package policy

import (
	"fmt"

	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/shared"
)

// MatchKind selects how a RoutePolicy pattern is compared with a path.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchPrefix   MatchKind = "prefix"
	MatchWildcard MatchKind = "wildcard"
)

// RoutePolicy declares who may access the routes matching Pattern.
type RoutePolicy struct {
	Pattern string
	Match   MatchKind
	// Public routes skip authorization entirely.
	Public bool
	// Roles permitted besides admin. Empty means any recognized role.
	Roles []auth.Role
}

// Permits reports whether role may access a non-public route under p.
func (p RoutePolicy) Permits(role auth.Role) bool {
	return auth.HasAnyRole(role, p.Roles)
}

// LoginCategory picks the login form an unauthenticated actor is sent to.
type LoginCategory string

const (
	CategoryAdmin   LoginCategory = "admin"
	CategoryTenant  LoginCategory = "tenant"
	CategoryGeneral LoginCategory = "general"
)

// VerdictKind is the outcome of one authorization decision.
type VerdictKind string

const (
	VerdictAllow               VerdictKind = "allow"
	VerdictRedirectToLogin     VerdictKind = "redirect_to_login"
	VerdictRedirectToDashboard VerdictKind = "redirect_to_dashboard"
)

// Reason records which rule produced a verdict.
type Reason string

const (
	ReasonPublic           Reason = "public"
	ReasonAdminOverride    Reason = "admin_override"
	ReasonRoleMatch        Reason = "role_match"
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonRoleMismatch     Reason = "role_mismatch"
	ReasonMalformedSession Reason = "malformed_session"
)

// Verdict is the result of Engine.Decide.
type Verdict struct {
	Kind VerdictKind
	// Category is set for VerdictRedirectToLogin.
	Category LoginCategory
	// Role is set for VerdictRedirectToDashboard and is always the session's own role.
	Role   auth.Role
	Reason Reason
	// UnknownRoute is true when no policy entry matched and the fail-safe default applied.
	UnknownRoute bool
}

// Allowed reports whether the verdict permits rendering.
func (v Verdict) Allowed() bool {
	return v.Kind == VerdictAllow
}

// Err maps a denying verdict to its error class. It returns nil for Allow.
// A denial decided by the fail-safe default also matches shared.ErrUnknownRoute.
func (v Verdict) Err() error {
	var err error
	switch v.Reason {
	case ReasonUnauthenticated:
		err = shared.ErrUnauthenticatedAccess
	case ReasonRoleMismatch:
		err = shared.ErrRoleMismatch
	case ReasonMalformedSession:
		err = shared.ErrMalformedSession
	default:
		return nil
	}
	if v.UnknownRoute {
		return fmt.Errorf("%w (%w)", err, shared.ErrUnknownRoute)
	}
	return err
}

func allow(reason Reason) Verdict {
	return Verdict{Kind: VerdictAllow, Reason: reason}
}

func redirectToLogin(category LoginCategory) Verdict {
	return Verdict{Kind: VerdictRedirectToLogin, Category: category, Reason: ReasonUnauthenticated}
}

func redirectToDashboard(role auth.Role, reason Reason) Verdict {
	return Verdict{Kind: VerdictRedirectToDashboard, Role: role, Reason: reason}
}
