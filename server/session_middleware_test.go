package server_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/impact-portal/identity"
	"github.com/stretchr/testify/require"
)

func requireDenied(t *testing.T, f *fixture, path string, opts ...requestOption) {
	t.Helper()
	rec := f.do(t, http.MethodGet, path, nil, opts...)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	cookies := responseCookies(rec)
	for _, name := range []string{"auth_token", "refresh_token"} {
		c, ok := cookies[name]
		require.True(t, ok, "%s should be cleared", name)
		require.Empty(t, c.Value)
		require.Equal(t, -1, c.MaxAge)
		require.Equal(t, "/", c.Path)
	}
}

func TestSessionPassesUnprotectedPaths(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/", "/healthz", "/administrator", "/donors"} {
		rec := f.do(t, http.MethodGet, path, nil, withCookie("auth_token", "garbage"), withCookie("refresh_token", "garbage"))
		require.NotEqual(t, http.StatusFound, rec.Code, path)
		require.Empty(t, rec.Result().Cookies(), path)
	}
	require.Zero(t, f.provider.totalCalls())
}

func TestSessionDeniesWithoutAccessToken(t *testing.T) {
	f := newFixture(t)

	requireDenied(t, f, "/admin")
	requireDenied(t, f, "/project-manager/reports")

	// A refresh token alone is not enough to attempt a refresh
	requireDenied(t, f, "/admin", withCookie("refresh_token", "valid-r1"))
	require.Empty(t, f.provider.callsTo("RefreshSession"))
}

func TestSessionRefreshRotatesCookies(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/admin/dashboard", nil,
		withCookie("auth_token", "expired"),
		withCookie("refresh_token", "valid-r1"),
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "Administration")

	cookies := responseCookies(rec)
	require.Equal(t, "a2", cookies["auth_token"].Value)
	require.Equal(t, 3600, cookies["auth_token"].MaxAge)
	require.True(t, cookies["auth_token"].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies["auth_token"].SameSite)
	require.Equal(t, "r2", cookies["refresh_token"].Value)
	require.Equal(t, 604800, cookies["refresh_token"].MaxAge)

	require.Equal(t, []string{"valid-r1"}, f.provider.callsTo("RefreshSession"))
	require.Empty(t, f.provider.callsTo("GetUser"), "the expired access token is never validated")
}

func TestSessionRefreshForwardsRotatedTokenDownstream(t *testing.T) {
	f := newFixture(t, func(_ *testConfig, p *stubProvider) {
		p.tokens["a2"] = adminIdentity
		p.refresh = func(context.Context, string) (*identity.Session, error) {
			return &identity.Session{AccessToken: "a2", ExpiresAt: time.Now().Add(time.Hour)}, nil
		}
	})

	rec := f.do(t, http.MethodGet, "/admin", nil,
		withCookie("auth_token", "expired"),
		withCookie("refresh_token", "r1"),
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The dashboard resolves the caller from the rotated cookie, not the stale one
	require.Equal(t, []string{"a2"}, f.provider.callsTo("GetUser"))

	cookies := responseCookies(rec)
	require.Equal(t, "a2", cookies["auth_token"].Value)
	_, refreshSet := cookies["refresh_token"]
	require.False(t, refreshSet, "an unrotated refresh token is left alone")
}

func TestSessionRefreshFailureDenies(t *testing.T) {
	tests := []struct {
		name    string
		refresh func(context.Context, string) (*identity.Session, error)
	}{
		{
			name: "provider error",
			refresh: func(context.Context, string) (*identity.Session, error) {
				return nil, errors.New("refresh token revoked")
			},
		},
		{
			name: "no session",
			refresh: func(context.Context, string) (*identity.Session, error) {
				return nil, nil
			},
		},
		{
			name: "session without access token",
			refresh: func(context.Context, string) (*identity.Session, error) {
				return &identity.Session{RefreshToken: "r2"}, nil
			},
		},
		{
			name: "provider panics",
			refresh: func(context.Context, string) (*identity.Session, error) {
				panic("boom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(_ *testConfig, p *stubProvider) {
				p.refresh = tt.refresh
			})
			requireDenied(t, f, "/admin/dashboard",
				withCookie("auth_token", "expired"),
				withCookie("refresh_token", "r1"),
			)
		})
	}
}

func TestSessionAllowsValidAccessToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/donor", nil, withCookie("auth_token", donorToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "Impact overview")
	require.Empty(t, rec.Header().Values("Set-Cookie"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSessionDeniesRejectedAccessToken(t *testing.T) {
	f := newFixture(t)
	requireDenied(t, f, "/donor", withCookie("auth_token", "forged"))
}

func TestSessionProviderTimeoutDenies(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	f := newFixture(t, func(c *testConfig, p *stubProvider) {
		c.providerTimeout = 20 * time.Millisecond
		p.getUser = func(context.Context, string) (*identity.Identity, error) {
			<-block // ignores cancellation
			return donorIdentity, nil
		}
	})

	start := time.Now()
	requireDenied(t, f, "/donor", withCookie("auth_token", donorToken))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestDashboardRedirectsToOwnDashboard(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/admin", nil, withCookie("auth_token", donorToken))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/donor", rec.Header().Get("Location"))

	rec = f.do(t, http.MethodGet, "/donor/", nil, withCookie("auth_token", pmToken))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/project-manager", rec.Header().Get("Location"))
}

func TestDashboardShowsOnlyOwnProjectsToProjectManagers(t *testing.T) {
	f := newFixture(t)
	water := createProject(t, f, pmToken, "Clean water")
	createProject(t, f, otherPMToken, "School meals")

	rec := f.do(t, http.MethodPut, "/api/projects/"+water.ID, map[string]any{"spent": 1250.5}, withBearer(pmToken))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/project-manager", nil, withCookie("auth_token", pmToken))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Clean water")
	require.Contains(t, rec.Body.String(), "48749.50", "remaining budget")
	require.NotContains(t, rec.Body.String(), "School meals")

	rec = f.do(t, http.MethodGet, "/admin", nil, withCookie("auth_token", adminToken))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Clean water")
	require.Contains(t, rec.Body.String(), "School meals")
}

func TestSessionRefreshesEvenWithValidAccessToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/admin", nil,
		withCookie("auth_token", adminToken),
		withCookie("refresh_token", "valid-r1"),
	)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a2", responseCookies(rec)["auth_token"].Value)
	require.Equal(t, []string{"valid-r1"}, f.provider.callsTo("RefreshSession"))
	require.Empty(t, f.provider.callsTo("GetUser"))
}

func TestSessionDenialIsIdempotent(t *testing.T) {
	f := newFixture(t)

	for range 3 {
		requireDenied(t, f, "/donor/page")
		requireDenied(t, f, "/admin/dashboard",
			withCookie("auth_token", "expired"),
			withCookie("refresh_token", "revoked"),
		)
	}
	require.Equal(t, []string{"revoked", "revoked", "revoked"}, f.provider.callsTo("RefreshSession"))
}
