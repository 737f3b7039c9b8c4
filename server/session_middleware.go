package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/impact-portal/identity"
	"github.com/rs/zerolog/log"
)

// SessionMiddleware gates the protected page prefixes. A request either
// proceeds with a valid access token, proceeds with freshly rotated cookies,
// or is redirected to the root with both cookies cleared.
//
// A refresh token always takes priority over validating the access token,
// so a session is rotated on every protected page load while it is held.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.isProtectedPath(r.URL.Path) {
			s.metrics.decision(outcomePass)
			next(w, r)
			return
		}

		accessToken := cookieValue(r, authCookieName)
		if accessToken == "" {
			s.denySession(w, r, "missing access token", nil)
			return
		}

		if refreshToken := cookieValue(r, refreshCookieName); refreshToken != "" {
			session, err := callProvider(r.Context(), s.config.GetProviderTimeout(), func(ctx context.Context) (*identity.Session, error) {
				return s.provider.RefreshSession(ctx, refreshToken)
			})
			if err != nil || session == nil || session.AccessToken == "" {
				s.denySession(w, r, "session refresh failed", err)
				return
			}

			s.setSessionCookies(w, session)
			s.metrics.decision(outcomeRefreshed)
			r = withSessionCookies(r, session)
			next(w, r.WithContext(withIdentity(r.Context(), session.Identity)))
			return
		}

		id, err := callProvider(r.Context(), s.config.GetProviderTimeout(), func(ctx context.Context) (*identity.Identity, error) {
			return s.provider.GetUser(ctx, accessToken)
		})
		if err != nil || id == nil {
			s.denySession(w, r, "access token rejected", err)
			return
		}

		s.metrics.decision(outcomeAllow)
		next(w, r.WithContext(withIdentity(r.Context(), id)))
	}
}

func (s *Server) denySession(w http.ResponseWriter, r *http.Request, reason string, err error) {
	s.metrics.decision(outcomeDeny)
	log.Debug().Err(err).Str("path", r.URL.Path).Str("reason", reason).Msg("Session denied")
	s.clearSessionCookies(w)
	http.Redirect(w, r, RouteIndex, http.StatusFound)
}

// isProtectedPath matches a prefix exactly or as a parent directory, so
// /admin and /admin/users are protected but /administrator is not.
func (s *Server) isProtectedPath(path string) bool {
	for _, prefix := range s.config.GetProtectedPrefixes() {
		prefix = strings.TrimSuffix(prefix, "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

type providerResult[T any] struct {
	value T
	err   error
}

// callProvider runs one provider call bounded by timeout. A provider that
// panics or ignores cancellation still yields an error to the caller.
func callProvider[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan providerResult[T], 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				var zero T
				done <- providerResult[T]{value: zero, err: fmt.Errorf("identity provider panic: %v", rec)}
			}
		}()
		value, err := call(ctx)
		done <- providerResult[T]{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("identity provider call: %w", ctx.Err())
	}
}
