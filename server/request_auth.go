package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/impact-portal/identity"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/rs/zerolog/log"
)

// bearerToken returns the token from an "Authorization: Bearer" header
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate re-derives the caller for an API request. The access token
// comes from the auth_token cookie or a Bearer header; client supplied
// identity headers are never consulted.
func (s *Server) authenticate(r *http.Request) (*identity.Identity, error) {
	if id, ok := IdentityFromContext(r.Context()); ok && id.Role != "" {
		return id, nil
	}

	token := cookieValue(r, authCookieName)
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	id, err := callProvider(r.Context(), s.config.GetProviderTimeout(), func(ctx context.Context) (*identity.Identity, error) {
		return s.provider.GetUser(ctx, token)
	})
	if err != nil || id == nil || id.Subject == "" {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("Access token rejected")
		return nil, apperrors.ErrUnauthenticated
	}

	return s.withRole(r.Context(), id)
}

// withRole fills in the role from the users table when the provider does not carry one
func (s *Server) withRole(ctx context.Context, id *identity.Identity) (*identity.Identity, error) {
	if id.Role != "" {
		return id, nil
	}
	user, err := s.repos.Users.GetByID(ctx, id.Subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return id, nil // Authorize will reject a caller with no role
		}
		return nil, err
	}
	resolved := *id
	resolved.Role = user.Role
	return &resolved, nil
}

// requireRole authenticates the caller and checks their role in one step
func (s *Server) requireRole(r *http.Request, allowed ...users.RoleType) (*identity.Identity, error) {
	id, err := s.authenticate(r)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(id, allowed...); err != nil {
		return nil, err
	}
	return id, nil
}

// identityCache is implemented by providers that memoise GetUser results
type identityCache interface {
	Forget(accessToken string)
	ForgetSubject(subject string)
}

func (s *Server) forgetAccessToken(token string) {
	if cache, ok := s.provider.(identityCache); ok && token != "" {
		cache.Forget(token)
	}
}

func (s *Server) forgetSubject(subject string) {
	if cache, ok := s.provider.(identityCache); ok {
		cache.ForgetSubject(subject)
	}
}
