package policy

// DefaultConfig returns the portal's built-in route policy, used when no
// policy file is configured.
func DefaultConfig() *FileConfig {
	return &FileConfig{
		Routes: []RouteConfig{
			// Marketing and registration pages.
			{Path: "/", Public: true},
			{Path: "/about", Public: true},
			{Path: "/contact", Public: true},
			{Path: "/faq", Public: true},
			{Path: "/login", Public: true},
			{Path: "/admin-login", Public: true},
			{Path: "/tenant-login", Public: true},
			{Path: "/landlord-registration", Public: true},
			{Path: "/tenant-registration", Public: true},
			{Path: "/forgot-password", Public: true},
			{Path: "/assets", Match: "prefix", Public: true},
			{Path: "/static", Match: "prefix", Public: true},

			// Dashboards.
			{Path: "/tenant-dashboard", Roles: []string{"tenant"}},
			{Path: "/landlord-dashboard", Roles: []string{"landlord"}},
			{Path: "/admin-dashboard", Roles: []string{"admin"}},

			// Tenant area.
			{Path: "/tenant", Match: "prefix", Roles: []string{"tenant"}},
			{Path: "/rent-payment", Roles: []string{"tenant"}},
			{Path: "/maintenance-requests", Roles: []string{"tenant", "landlord"}},

			// Landlord area.
			{Path: "/building-management", Roles: []string{"landlord"}},
			{Path: "/property-listings", Roles: []string{"landlord"}},
			{Path: "/tenant-applications", Roles: []string{"landlord"}},
			{Path: "/landlord", Match: "prefix", Roles: []string{"landlord"}},

			// Admin area.
			{Path: "/admin", Match: "prefix", Roles: []string{"admin"}},
			{Path: "/user-management", Roles: []string{"admin"}},
			{Path: "/api/v1/admin", Match: "prefix", Roles: []string{"admin"}},

			// Shared authenticated pages.
			{Path: "/messages", Roles: []string{"tenant", "landlord"}},
			{Path: "/notifications", Match: "prefix"},
			{Path: "/profile"},
		},
		Login: LoginConfig{
			Classifiers: []ClassifierConfig{
				{Marker: "admin", Category: "admin"},
				{Marker: "tenant", Category: "tenant"},
			},
			Routes: LoginRoutes{
				Admin:   "/admin-login",
				Tenant:  "/tenant-login",
				General: "/login",
			},
		},
		Dashboards: DashboardConfig{
			Tenant:   "/tenant-dashboard",
			Landlord: "/landlord-dashboard",
			Admin:    "/admin-dashboard",
			Unknown:  "/login",
		},
	}
}

// Default builds the engine for DefaultConfig.
func Default() (*Engine, error) {
	return DefaultConfig().Build()
}
