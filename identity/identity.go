// Package identity is the boundary between the portal and the service that owns
// credentials and sessions. Handlers and the session middleware only ever ask a
// Provider to validate or rotate tokens; they never interpret token contents.
package identity

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/users"
)

var (
	ErrInvalidToken       = apperrors.ErrInvalidToken
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
	ErrAlreadyRegistered  = apperrors.ErrAlreadyExists
	ErrForbidden          = apperrors.ErrForbidden
	ErrUnsupported        = apperrors.ErrUnsupported
	ErrNoSession          = errors.New("no session returned")
)

// Identity is the subject a token resolves to
type Identity struct {
	Subject string         `json:"sub"`
	Email   string         `json:"email,omitempty"`
	Role    users.RoleType `json:"role,omitempty"` // Empty when the provider does not carry roles
}

// Session is a token pair issued by the provider
type Session struct {
	AccessToken  string
	RefreshToken string // May be empty if the provider did not rotate it
	ExpiresAt    time.Time
	Identity     *Identity // Optional, set when the provider returns the user with the session
}

// Credentials are used to register a new account
type Credentials struct {
	Email    string
	Password string
	FullName string
	Role     users.RoleType
}

// Provider is any identity backend that can validate and rotate sessions.
type Provider interface {
	// GetUser validates an access token and returns who it belongs to.
	GetUser(ctx context.Context, accessToken string) (*Identity, error)
	// RefreshSession exchanges a refresh token for a new token pair.
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	// SignUp registers credentials with the provider.
	SignUp(ctx context.Context, credentials Credentials) (*Identity, error)
	// SignIn exchanges an email and password for a session.
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignOut revokes a refresh token where the backend supports revocation.
	SignOut(ctx context.Context, refreshToken string) error
}
