package server_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jrsteele09/impact-portal/identity"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/stretchr/testify/require"
)

func TestLoginSetsSessionCookies(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    donorEmail,
		"password": donorPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeData[struct {
		Token string      `json:"token"`
		User  *users.User `json:"user"`
	}](t, rec)
	require.Equal(t, "a1", body.Token)
	require.Equal(t, donorIdentity.Subject, body.User.ID)
	require.Equal(t, users.RoleDonor, body.User.Role)

	cookies := responseCookies(rec)
	require.Equal(t, "a1", cookies["auth_token"].Value)
	require.Equal(t, "r1", cookies["refresh_token"].Value)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    donorEmail,
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid email or password", errorMessage(t, rec))
	require.Empty(t, rec.Result().Cookies())

	rec = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"password": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Email is required", errorMessage(t, rec))
}

func TestLoginIsRateLimited(t *testing.T) {
	f := newFixture(t, func(c *testConfig, _ *stubProvider) {
		c.loginRate = 0.001
		c.loginBurst = 2
	})

	creds := map[string]string{"email": donorEmail, "password": "wrong"}
	for range 2 {
		rec := f.do(t, http.MethodPost, "/api/auth/login", creds)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/api/auth/login", creds)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestLoginRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	f := newFixture(t, func(c *testConfig, _ *stubProvider) {
		c.loginRate = 0.001
		c.loginBurst = 2
	})

	creds := map[string]string{"email": donorEmail, "password": "wrong"}
	throttled := 0
	for i := range 50 {
		rec := f.do(t, http.MethodPost, "/api/auth/login", creds, withForwardedFor(fmt.Sprintf("10.0.0.%d", i)))
		if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	require.Equal(t, 48, throttled)
}

func TestLoginRateLimitBehindTrustedProxy(t *testing.T) {
	f := newFixture(t, func(c *testConfig, _ *stubProvider) {
		c.loginRate = 0.001
		c.loginBurst = 1
		c.trustedProxies = []string{"192.0.2.0/24", "10.1.1.1"}
	})
	creds := map[string]string{"email": donorEmail, "password": "wrong"}
	viaProxy := withRemoteAddr("192.0.2.10:4000")

	// Distinct clients behind the proxy get their own buckets
	rec := f.do(t, http.MethodPost, "/api/auth/login", creds, viaProxy, withForwardedFor("203.0.113.5"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/auth/login", creds, viaProxy, withForwardedFor("203.0.113.6, 10.1.1.1"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A client cannot escape its bucket by prepending a forged hop
	rec = f.do(t, http.MethodPost, "/api/auth/login", creds, viaProxy, withForwardedFor("198.51.100.1, 203.0.113.5"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// An untrusted peer's header is ignored
	untrusted := withRemoteAddr("198.51.100.77:5000")
	rec = f.do(t, http.MethodPost, "/api/auth/login", creds, untrusted, withForwardedFor("203.0.113.9"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/auth/login", creds, untrusted, withForwardedFor("203.0.113.10"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLogoutRevokesAndClearsCookies(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/logout", nil,
		withCookie("auth_token", "a1"),
		withCookie("refresh_token", "r1"),
	)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]bool{"success": true}, decodeData[map[string]bool](t, rec))
	require.Equal(t, []string{"r1"}, f.provider.callsTo("SignOut"))

	cookies := responseCookies(rec)
	require.Equal(t, -1, cookies["auth_token"].MaxAge)
	require.Equal(t, -1, cookies["refresh_token"].MaxAge)
}

func TestLogoutEvictsCachedIdentity(t *testing.T) {
	f := newFixture(t, func(c *testConfig, _ *stubProvider) {
		c.cacheIdentities = true
	})

	rec := f.do(t, http.MethodGet, "/api/auth/me", nil, withCookie("auth_token", donorToken))
	require.Equal(t, http.StatusOK, rec.Code)

	delete(f.provider.tokens, donorToken)
	rec = f.do(t, http.MethodGet, "/api/auth/me", nil, withCookie("auth_token", donorToken))
	require.Equal(t, http.StatusOK, rec.Code, "served from the identity cache")

	rec = f.do(t, http.MethodPost, "/api/auth/logout", nil, withCookie("auth_token", donorToken))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/auth/me", nil, withCookie("auth_token", donorToken))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/auth/me", nil, withBearer(pmToken))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, pmIdentity.Email, decodeData[*users.User](t, rec).Email)

	rec = f.do(t, http.MethodGet, "/api/auth/me", nil, withCookie("auth_token", donorToken))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, donorIdentity.Subject, decodeData[*users.User](t, rec).ID)

	rec = f.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Unauthorized", errorMessage(t, rec))

	rec = f.do(t, http.MethodGet, "/api/auth/me", nil, withBearer(ghostToken))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User profile not found", errorMessage(t, rec))
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":     "  New.Donor@Example.org ",
		"password":  "Str0ngPass",
		"full_name": "New Donor",
		"role":      "donor",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[*users.User](t, rec)
	require.Equal(t, "new.donor@example.org", created.Email)
	require.Equal(t, users.RoleDonor, created.Role)

	stored, err := f.users.GetByEmail(context.Background(), "new.donor@example.org")
	require.NoError(t, err)
	require.Equal(t, "New Donor", stored.FullName)
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]string
		opts    []requestOption
		code    int
		message string
	}{
		{
			name:    "weak password",
			body:    map[string]string{"email": "a@example.org", "password": "short", "full_name": "A", "role": "donor"},
			code:    http.StatusBadRequest,
			message: "Password must be at least 8 characters long",
		},
		{
			name:    "unknown role",
			body:    map[string]string{"email": "a@example.org", "password": "Str0ngPass", "full_name": "A", "role": "superuser"},
			code:    http.StatusBadRequest,
			message: `Invalid role "superuser"`,
		},
		{
			name:    "already registered",
			body:    map[string]string{"email": donorEmail, "password": "Str0ngPass", "full_name": "A", "role": "donor"},
			code:    http.StatusBadRequest,
			message: "Email already registered",
		},
		{
			name:    "admin without admin caller",
			body:    map[string]string{"email": "b@example.org", "password": "Str0ngPass", "full_name": "B", "role": "admin"},
			opts:    []requestOption{withBearer(pmToken)},
			code:    http.StatusForbidden,
			message: "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(t, http.MethodPost, "/api/auth/register", tt.body, tt.opts...)
			require.Equal(t, tt.code, rec.Code)
			require.Equal(t, tt.message, errorMessage(t, rec))
		})
	}
}

func TestRegisterAdminByAdmin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":     "second.admin@example.org",
		"password":  "Str0ngPass",
		"full_name": "Second Admin",
		"role":      "admin",
	}, withBearer(adminToken))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, users.RoleAdmin, decodeData[*users.User](t, rec).Role)
}

func TestRegisterUnsupportedByProvider(t *testing.T) {
	f := newFixture(t, func(_ *testConfig, p *stubProvider) {
		p.signUp = func(context.Context, identity.Credentials) (*identity.Identity, error) {
			return nil, identity.ErrUnsupported
		}
	})

	rec := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":     "c@example.org",
		"password":  "Str0ngPass",
		"full_name": "C",
		"role":      "donor",
	})
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestValidatePassword(t *testing.T) {
	f := newFixture(t)

	type result struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}

	rec := f.do(t, http.MethodPost, "/api/validate-password", map[string]string{"password": "Str0ngPass"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, result{Valid: true}, decodeData[result](t, rec))

	rec = f.do(t, http.MethodPost, "/api/validate-password", map[string]string{"password": "alllowercase1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, result{Error: "Password must contain at least one uppercase letter"}, decodeData[result](t, rec))
}
