package policy

import (
	"strings"

	"github.com/upb/rental-portal/internal/auth"
)

const fallbackLoginRoute = "/login"

// Classifier maps paths containing Marker to a login category.
type Classifier struct {
	Marker   string
	Category LoginCategory
}

// LoginDestinations picks the login form for an unauthenticated actor.
type LoginDestinations struct {
	// Classifiers are tried in order; the first marker found in the path wins.
	Classifiers []Classifier
	Routes      map[LoginCategory]string
}

// Classify returns the login category for path.
func (d LoginDestinations) Classify(path string) LoginCategory {
	p := NormalizePath(path)
	for _, c := range d.Classifiers {
		if c.Marker != "" && strings.Contains(p, strings.ToLower(c.Marker)) {
			return c.Category
		}
	}
	return CategoryGeneral
}

// Route returns the login route for category, falling back to the general
// login route.
func (d LoginDestinations) Route(category LoginCategory) string {
	if r, ok := d.Routes[category]; ok && r != "" {
		return r
	}
	if r, ok := d.Routes[CategoryGeneral]; ok && r != "" {
		return r
	}
	return fallbackLoginRoute
}

// DashboardDestinations maps each role to its landing route.
type DashboardDestinations struct {
	Routes map[auth.Role]string
	// Unknown is used for sessions whose role is missing or unrecognized.
	Unknown string
}

// Route returns the landing route for role. Roles without an entry, and
// unrecognized roles, get Unknown; never another role's dashboard.
func (d DashboardDestinations) Route(role auth.Role) string {
	if role.Valid() {
		if r, ok := d.Routes[role]; ok && r != "" {
			return r
		}
	}
	if d.Unknown != "" {
		return d.Unknown
	}
	return fallbackLoginRoute
}
