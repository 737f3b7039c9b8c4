// Package oidcprovider delegates identity to an external OpenID Connect issuer.
// Access tokens are validated against the issuer's userinfo endpoint and
// sessions are rotated with the refresh_token grant.
package oidcprovider

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/impact-portal/identity"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/internal/utils"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var _ identity.Provider = (*Provider)(nil)

type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	SignUpURL    string       // Optional registration endpoint; SignUp is unsupported without it
	HTTPClient   *http.Client // Optional, defaults to http.DefaultClient
}

type Provider struct {
	oidcProvider       *oidc.Provider
	oauth2Config       oauth2.Config
	signUpURL          string
	revocationEndpoint string
	httpClient         *http.Client
}

// New discovers the issuer's endpoints. It fails if the discovery document
// cannot be fetched or names a different issuer.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	oidcProvider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC issuer %s: %w", cfg.Issuer, err)
	}

	var discovery struct {
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	if err := oidcProvider.Claims(&discovery); err != nil {
		return nil, fmt.Errorf("failed to read discovery document: %w", err)
	}

	return &Provider{
		oidcProvider: oidcProvider,
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess},
		},
		signUpURL:          cfg.SignUpURL,
		revocationEndpoint: discovery.RevocationEndpoint,
		httpClient:         client,
	}, nil
}

type userInfoClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Roles []any  `json:"roles"`
}

func (p *Provider) GetUser(ctx context.Context, accessToken string) (*identity.Identity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, identity.ErrInvalidToken
	}

	info, err := p.oidcProvider.UserInfo(p.clientContext(ctx), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return nil, apperrors.Wrapf(identity.ErrInvalidToken, "%v", err)
	}

	var claims userInfoClaims
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo claims: %w", err)
	}

	email := claims.Email
	if email == "" {
		email = info.Email
	}
	return &identity.Identity{
		Subject: info.Subject,
		Email:   users.NormaliseEmail(email),
		Role:    roleFromClaims(claims),
	}, nil
}

// roleFromClaims accepts either a single "role" claim or the first portal
// role found in a "roles" array. Unknown roles are dropped.
func roleFromClaims(claims userInfoClaims) users.RoleType {
	if role := users.RoleType(claims.Role); role.Valid() {
		return role
	}
	for _, r := range utils.ToStringSlice(claims.Roles) {
		if role := users.RoleType(r); role.Valid() {
			return role
		}
	}
	return ""
}

func (p *Provider) RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error) {
	if refreshToken == "" {
		return nil, identity.ErrNoSession
	}

	token, err := p.oauth2Config.TokenSource(p.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: %s", identity.ErrNoSession, retrieveErr.ErrorCode)
		}
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, identity.ErrNoSession
	}

	session := &identity.Session{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry,
	}
	// x/oauth2 carries the old refresh token forward when the issuer does not rotate it
	if token.RefreshToken != refreshToken {
		session.RefreshToken = token.RefreshToken
	}
	return session, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	token, err := p.oauth2Config.PasswordCredentialsToken(p.clientContext(ctx), users.NormaliseEmail(email), password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	id, err := p.GetUser(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	return &identity.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		Identity:     id,
	}, nil
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

type signUpResponse struct {
	ID    string `json:"id"`
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

func (p *Provider) SignUp(ctx context.Context, credentials identity.Credentials) (*identity.Identity, error) {
	if p.signUpURL == "" {
		return nil, apperrors.Wrapf(identity.ErrUnsupported, "sign up is not configured for this issuer")
	}

	body, err := json.Marshal(signUpRequest{
		Email:    users.NormaliseEmail(credentials.Email),
		Password: credentials.Password,
		FullName: credentials.FullName,
		Role:     string(credentials.Role),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.signUpURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(url.QueryEscape(p.oauth2Config.ClientID), url.QueryEscape(p.oauth2Config.ClientSecret))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign up request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, identity.ErrAlreadyRegistered
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("sign up returned status %d", resp.StatusCode)
	}

	var created signUpResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode sign up response: %w", err)
	}

	subject := cmp.Or(created.Sub, created.ID)
	if subject == "" {
		return nil, fmt.Errorf("sign up response has no subject")
	}
	return &identity.Identity{
		Subject: subject,
		Email:   users.NormaliseEmail(cmp.Or(created.Email, credentials.Email)),
		Role:    credentials.Role,
	}, nil
}

// SignOut revokes the refresh token at the issuer's revocation endpoint when
// discovery advertised one (RFC 7009). Otherwise there is nothing to revoke.
func (p *Provider) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" || p.revocationEndpoint == "" {
		return nil
	}

	form := url.Values{
		"token":           {refreshToken},
		"token_type_hint": {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revocationEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(url.QueryEscape(p.oauth2Config.ClientID), url.QueryEscape(p.oauth2Config.ClientSecret))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("Refresh token revocation was not accepted")
	}
	return nil
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return oidc.ClientContext(ctx, p.httpClient)
}
