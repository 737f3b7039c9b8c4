// Package local is an identity provider backed by the portal's own users table.
// Passwords are bcrypt hashes on the user record, access tokens are HS256 JWTs
// and refresh tokens are opaque random strings rotated on every use.
package local

import (
	"context"
	"fmt"

	"github.com/jrsteele09/impact-portal/identity"
	"github.com/jrsteele09/impact-portal/identity/local/refresh"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/users"
)

var _ identity.Provider = (*Provider)(nil)

type Provider struct {
	users   users.Repo
	refresh *refresh.Manager
	tokens  *TokenIssuer
}

func New(userRepo users.Repo, refreshManager *refresh.Manager, tokens *TokenIssuer) *Provider {
	return &Provider{
		users:   userRepo,
		refresh: refreshManager,
		tokens:  tokens,
	}
}

// GetUser verifies the access token and confirms the subject still exists.
// The role comes from the stored user so a role change applies immediately.
func (p *Provider) GetUser(ctx context.Context, accessToken string) (*identity.Identity, error) {
	claims, err := p.tokens.Verify(accessToken)
	if err != nil {
		return nil, apperrors.Wrapf(identity.ErrInvalidToken, "%v", err)
	}

	user, err := p.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrapf(identity.ErrInvalidToken, "subject %s no longer exists", claims.Subject)
		}
		return nil, err
	}
	return toIdentity(user), nil
}

func (p *Provider) RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error) {
	userID, rotated, err := p.refresh.Rotate(ctx, refreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidRefreshToken) || apperrors.Is(err, apperrors.ErrRefreshTokenExpired) {
			return nil, fmt.Errorf("%w: %w", identity.ErrNoSession, err)
		}
		return nil, err
	}

	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			_ = p.refresh.Revoke(ctx, rotated)
			return nil, fmt.Errorf("%w: user %s no longer exists", identity.ErrNoSession, userID)
		}
		return nil, err
	}

	accessToken, expiresAt, err := p.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &identity.Session{
		AccessToken:  accessToken,
		RefreshToken: rotated,
		ExpiresAt:    expiresAt,
		Identity:     toIdentity(user),
	}, nil
}

// SignUp stores a new user with a hashed password. The caller is responsible
// for validating the credentials and deciding which roles may be granted.
func (p *Provider) SignUp(ctx context.Context, credentials identity.Credentials) (*identity.Identity, error) {
	hash, err := users.HashPassword(credentials.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &users.User{
		Email:        credentials.Email,
		FullName:     credentials.FullName,
		Role:         credentials.Role,
		PasswordHash: hash,
	}
	if err := p.users.Create(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, identity.ErrAlreadyRegistered
		}
		return nil, err
	}
	return toIdentity(user), nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	user, err := p.users.GetByEmail(ctx, users.NormaliseEmail(email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, identity.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := p.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := p.refresh.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &identity.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Identity:     toIdentity(user),
	}, nil
}

func (p *Provider) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return p.refresh.Revoke(ctx, refreshToken)
}

func toIdentity(u *users.User) *identity.Identity {
	return &identity.Identity{
		Subject: u.ID,
		Email:   u.Email,
		Role:    u.Role,
	}
}
