package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/utils"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk policy format.
type FileConfig struct {
	Routes     []RouteConfig   `yaml:"routes" validate:"required,min=1,dive"`
	Login      LoginConfig     `yaml:"login"`
	Dashboards DashboardConfig `yaml:"dashboards"`
}

// RouteConfig is one route policy entry. A path of "*" declares the wildcard.
type RouteConfig struct {
	Path   string   `yaml:"path" validate:"required"`
	Match  string   `yaml:"match" validate:"omitempty,oneof=exact prefix wildcard"`
	Public bool     `yaml:"public"`
	Roles  []string `yaml:"roles" validate:"dive,oneof=tenant landlord admin"`
}

// LoginConfig holds the login-category classifiers and login routes.
type LoginConfig struct {
	Classifiers []ClassifierConfig `yaml:"classifiers" validate:"dive"`
	Routes      LoginRoutes        `yaml:"routes"`
}

// ClassifierConfig maps a path marker to a login category.
type ClassifierConfig struct {
	Marker   string `yaml:"marker" validate:"required"`
	Category string `yaml:"category" validate:"required,oneof=admin tenant general"`
}

// LoginRoutes lists the login form for each category.
type LoginRoutes struct {
	Admin   string `yaml:"admin" validate:"omitempty,startswith=/"`
	Tenant  string `yaml:"tenant" validate:"omitempty,startswith=/"`
	General string `yaml:"general" validate:"required,startswith=/"`
}

// DashboardConfig lists each role's landing route.
type DashboardConfig struct {
	Tenant   string `yaml:"tenant" validate:"required,startswith=/"`
	Landlord string `yaml:"landlord" validate:"required,startswith=/"`
	Admin    string `yaml:"admin" validate:"required,startswith=/"`
	Unknown  string `yaml:"unknown" validate:"required,startswith=/"`
}

// LoadFile reads and validates a policy file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML policy document. Unknown fields are
// rejected.
func Parse(data []byte) (*FileConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg FileConfig
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("policy document is empty")
		}
		return nil, fmt.Errorf("failed to decode policy: %w", err)
	}
	if err := utils.ValidateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &cfg, nil
}

// Build compiles the configuration into an Engine and checks that it cannot
// produce redirect loops: every login route and the unknown-role route must
// be public, and every role must be allowed on its own dashboard.
func (c *FileConfig) Build() (*Engine, error) {
	entries := make([]RoutePolicy, 0, len(c.Routes))
	for _, rc := range c.Routes {
		entry := RoutePolicy{
			Pattern: rc.Path,
			Match:   MatchKind(rc.Match),
			Public:  rc.Public,
		}
		if rc.Path == "*" {
			entry.Match = MatchWildcard
		}
		for _, name := range rc.Roles {
			role, ok := auth.ParseRole(name)
			if !ok {
				return nil, fmt.Errorf("route %s: unknown role %q", rc.Path, name)
			}
			entry.Roles = append(entry.Roles, role)
		}
		entries = append(entries, entry)
	}

	table, err := NewTable(entries)
	if err != nil {
		return nil, err
	}

	login := LoginDestinations{Routes: map[LoginCategory]string{CategoryGeneral: c.Login.Routes.General}}
	if c.Login.Routes.Admin != "" {
		login.Routes[CategoryAdmin] = c.Login.Routes.Admin
	}
	if c.Login.Routes.Tenant != "" {
		login.Routes[CategoryTenant] = c.Login.Routes.Tenant
	}
	for _, cc := range c.Login.Classifiers {
		login.Classifiers = append(login.Classifiers, Classifier{
			Marker:   cc.Marker,
			Category: LoginCategory(cc.Category),
		})
	}

	dashboards := DashboardDestinations{
		Routes: map[auth.Role]string{
			auth.RoleTenant:   c.Dashboards.Tenant,
			auth.RoleLandlord: c.Dashboards.Landlord,
			auth.RoleAdmin:    c.Dashboards.Admin,
		},
		Unknown: c.Dashboards.Unknown,
	}

	engine := NewEngine(table, login, dashboards)
	if err := checkReachable(engine, login, dashboards); err != nil {
		return nil, err
	}
	return engine, nil
}

func checkReachable(e *Engine, login LoginDestinations, dashboards DashboardDestinations) error {
	for category, route := range login.Routes {
		if !e.Resolve(route).Policy.Public {
			return fmt.Errorf("login route %s for %s category must be public", route, category)
		}
	}
	if !e.Resolve(dashboards.Unknown).Policy.Public {
		return fmt.Errorf("unknown-role route %s must be public", dashboards.Unknown)
	}
	for role, route := range dashboards.Routes {
		if v := e.Decide(route, auth.NewSession("", role)); !v.Allowed() {
			return fmt.Errorf("dashboard %s is not accessible to role %s", route, role)
		}
	}
	return nil
}
