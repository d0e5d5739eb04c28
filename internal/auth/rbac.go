package auth

import "strings"

// Role is an actor category governing route access.
type Role string

const (
	RoleNone     Role = ""
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// Roles returns the recognized roles in a stable order.
func Roles() []Role {
	return []Role{RoleTenant, RoleLandlord, RoleAdmin}
}

// ParseRole parses a role name case-insensitively. The second return value is
// false when the name is not one of the recognized roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RoleNone, false
	}
	return r, true
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r is the admin role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Satisfies reports whether r meets the required role. Admin satisfies every
// requirement; tenant and landlord only satisfy themselves.
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() {
		return false
	}
	return r.IsAdmin() || r == required
}

// HasAnyRole reports whether r is admin or one of the permitted roles. An empty
// permitted set admits any recognized role.
func HasAnyRole(r Role, permitted []Role) bool {
	if !r.Valid() {
		return false
	}
	if r.IsAdmin() || len(permitted) == 0 {
		return true
	}
	for _, p := range permitted {
		if r == p {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}
