package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/rental-portal/internal/auth"
)

const samplePolicy = `
routes:
  - path: /
    public: true
  - path: /login
    public: true
  - path: /staff-login
    public: true
  - path: /tenant-home
    roles: [tenant]
  - path: /owner-home
    roles: [landlord]
  - path: /control
    match: prefix
    roles: [admin]
  - path: "*"
    roles: [tenant, landlord]
login:
  classifiers:
    - marker: control
      category: admin
  routes:
    admin: /staff-login
    general: /login
dashboards:
  tenant: /tenant-home
  landlord: /owner-home
  admin: /control
  unknown: /login
`

func TestParseAndBuild(t *testing.T) {
	cfg, err := Parse([]byte(samplePolicy))
	require.NoError(t, err)
	require.Len(t, cfg.Routes, 7)

	engine, err := cfg.Build()
	require.NoError(t, err)

	t.Run("classifier picks the admin login", func(t *testing.T) {
		v := engine.Decide("/control/users", auth.Anonymous())
		assert.Equal(t, CategoryAdmin, v.Category)
		assert.Equal(t, "/staff-login", engine.Target(v))
	})

	t.Run("paths without a classifier use the general login", func(t *testing.T) {
		v := engine.Decide("/tenant-home", auth.Anonymous())
		assert.Equal(t, CategoryGeneral, v.Category)
		assert.Equal(t, "/login", engine.Target(v))
	})

	t.Run("wildcard replaces the fail-safe default", func(t *testing.T) {
		v := engine.Decide("/anything", auth.NewSession("u", auth.RoleTenant))
		assert.True(t, v.Allowed())
		assert.False(t, v.UnknownRoute)
	})

	t.Run("role dashboards come from the file", func(t *testing.T) {
		v := engine.Decide("/control", auth.NewSession("u", auth.RoleLandlord))
		assert.Equal(t, "/owner-home", engine.Target(v))
	})
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"unknown field", "routes:\n  - path: /\n    public: true\n    secret: 1\n"},
		{"no routes", "routes: []\nlogin:\n  routes:\n    general: /login\ndashboards:\n  tenant: /t\n  landlord: /l\n  admin: /a\n  unknown: /login\n"},
		{"unknown role", "routes:\n  - path: /x\n    roles: [owner]\nlogin:\n  routes:\n    general: /login\ndashboards:\n  tenant: /t\n  landlord: /l\n  admin: /a\n  unknown: /login\n"},
		{"missing dashboards", "routes:\n  - path: /login\n    public: true\nlogin:\n  routes:\n    general: /login\n"},
		{"relative login route", "routes:\n  - path: /login\n    public: true\nlogin:\n  routes:\n    general: login\ndashboards:\n  tenant: /t\n  landlord: /l\n  admin: /a\n  unknown: /login\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestBuildRejectsRedirectLoops(t *testing.T) {
	t.Run("login route must be public", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Login.Routes.Admin = "/admin-dashboard"
		_, err := cfg.Build()
		assert.ErrorContains(t, err, "must be public")
	})

	t.Run("unknown-role route must be public", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Dashboards.Unknown = "/profile"
		_, err := cfg.Build()
		assert.ErrorContains(t, err, "unknown-role route")
	})

	t.Run("dashboard must admit its role", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Dashboards.Tenant = "/landlord-dashboard"
		_, err := cfg.Build()
		assert.ErrorContains(t, err, "not accessible to role tenant")
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePolicy), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/staff-login", cfg.Login.Routes.Admin)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	_, err := Default()
	require.NoError(t, err)
}
