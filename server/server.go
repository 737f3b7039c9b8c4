package server

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/impact-portal/identity"
	"github.com/jrsteele09/impact-portal/indicators"
	"github.com/jrsteele09/impact-portal/internal/config"
	"github.com/jrsteele09/impact-portal/projects"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/rs/zerolog/log"
)

// Repos groups the persistence boundary the handlers work against
type Repos struct {
	Users      users.Repo
	Projects   projects.Repo
	Indicators indicators.Repo
}

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	handler      http.HandlerFunc
	routes       []string
	config       config.Config
	provider     identity.Provider
	repos        Repos
	validate     *validator.Validate
	loginLimiter *ipRateLimiter
	metrics      *metrics

	trustedProxies []netip.Prefix
}

func New(cfg config.Config, provider identity.Provider, repos Repos) (*Server, error) {
	if provider == nil {
		return nil, fmt.Errorf("[Server New] an identity provider is required")
	}
	if repos.Users == nil || repos.Projects == nil || repos.Indicators == nil {
		return nil, fmt.Errorf("[Server New] users, projects and indicators repositories are required")
	}

	trustedProxies, err := parseTrustedProxies(cfg.GetTrustedProxies())
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}

	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		config:       cfg,
		provider:     provider,
		repos:        repos,
		validate:     newValidator(),
		loginLimiter: newIPRateLimiter(cfg.GetLoginRateLimit(), cfg.GetLoginBurst()),
		metrics:      newMetrics(),

		trustedProxies: trustedProxies,
	}

	// Bootstrap: ensure the configured administrator exists
	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	// Every request passes the session gate; it only acts on protected page prefixes
	s.handler = ChainMiddleware(s.mux.ServeHTTP,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.FrameSecurityMiddleware,
		s.SessionMiddleware,
	)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Str("method", method).Str("path", path).Msg("Route registered")
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
