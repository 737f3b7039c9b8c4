package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the server-side record of an issued refresh token.
// The client only ever holds the raw token; the store keeps its SHA-256 hash.
type StoredRefreshToken struct {
	TokenHash string
	UserID    string
	Iat       time.Time
	ExpiresAt time.Time
}

// Repo stores refresh token metadata keyed by token hash.
// Missing tokens yield internal/errors.ErrNotFound.
type Repo interface {
	Upsert(ctx context.Context, refreshToken *StoredRefreshToken) error
	Delete(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
	Get(ctx context.Context, tokenHash string) (*StoredRefreshToken, error)
}
