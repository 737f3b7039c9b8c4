package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex   = "/"
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Auth API
	RouteAuthLogin    = "/api/auth/login"
	RouteAuthLogout   = "/api/auth/logout"
	RouteAuthMe       = "/api/auth/me"
	RouteAuthRegister = "/api/auth/register"

	// Resource API
	RouteProjects            = "/api/projects"
	RouteProject             = "/api/projects/{id}"
	RouteIndicators          = "/api/indicators"
	RouteIndicator           = "/api/indicators/{id}"
	RouteUsers               = "/api/users"
	RouteAPIValidatePassword = "/api/validate-password"

	// Dashboards (guarded by the session middleware)
	RouteAdminDashboard          = "/admin"
	RouteDonorDashboard          = "/donor"
	RouteProjectManagerDashboard = "/project-manager"
)
