package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex+"{$}", s.IndexHandler())
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.LoginRateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIValidatePassword, ChainMiddleware(s.ValidatePasswordHandler(), s.APIMiddleware()...))

	// PROJECTS
	s.RegisterRouteHandler("GET "+RouteProjects, ChainMiddleware(s.ListProjectsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteProjects, ChainMiddleware(s.CreateProjectHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProject, ChainMiddleware(s.GetProjectHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteProject, ChainMiddleware(s.UpdateProjectHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteProject, ChainMiddleware(s.DeleteProjectHandler(), s.APIMiddleware()...))

	// INDICATORS
	s.RegisterRouteHandler("GET "+RouteIndicators, ChainMiddleware(s.ListIndicatorsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteIndicators, ChainMiddleware(s.CreateIndicatorHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteIndicator, ChainMiddleware(s.GetIndicatorHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteIndicator, ChainMiddleware(s.UpdateIndicatorHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteIndicator, ChainMiddleware(s.DeleteIndicatorHandler(), s.APIMiddleware()...))

	// USERS
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteUsers, ChainMiddleware(s.UpdateUserHandler(), s.APIMiddleware()...))

	// CORS preflight for the whole API surface
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	// DASHBOARDS
	for _, d := range dashboards {
		handler := ChainMiddleware(s.DashboardHandler(d), s.HTMLMiddleWare()...)
		s.RegisterRouteHandler("GET "+d.path, handler)
		s.RegisterRouteHandler("GET "+d.path+"/", handler)
	}
}
