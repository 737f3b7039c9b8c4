package refresh

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo        Repo
	expiry      time.Duration
	tokenLength int
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, expiry time.Duration, tokenLength int) *Manager {
	return &Manager{
		repo:        repo,
		expiry:      expiry,
		tokenLength: tokenLength,
	}
}

// Create generates a new refresh token for the user and stores its hash.
// Any refresh token the user already holds is revoked (single refresh token per user).
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	if err := m.repo.DeleteByUserID(ctx, userID); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
	}

	tokenBytes := make([]byte, m.tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	now := NowTimeFunc()
	if err := m.repo.Upsert(ctx, &StoredRefreshToken{
		TokenHash: HashToken(tokenStr),
		UserID:    userID,
		Iat:       now,
		ExpiresAt: now.Add(m.expiry),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenStr, nil
}

// Rotate consumes a refresh token and issues its replacement. The presented
// token is invalid afterwards whether or not rotation succeeds.
// Deleting the stored token decides which of two concurrent callers wins.
func (m *Manager) Rotate(ctx context.Context, token string) (userID, newToken string, err error) {
	stored, err := m.repo.Get(ctx, HashToken(token))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", "", apperrors.ErrInvalidRefreshToken
		}
		return "", "", fmt.Errorf("failed to load refresh token: %w", err)
	}

	if err := m.repo.Delete(ctx, stored.TokenHash); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", "", apperrors.ErrInvalidRefreshToken
		}
		return "", "", fmt.Errorf("failed to delete refresh token: %w", err)
	}

	if m.IsExpired(stored) {
		return "", "", apperrors.ErrRefreshTokenExpired
	}

	newToken, err = m.Create(ctx, stored.UserID)
	if err != nil {
		return "", "", err
	}
	return stored.UserID, newToken, nil
}

// Revoke deletes a refresh token. Unknown tokens are not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	err := m.repo.Delete(ctx, HashToken(token))
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}

// IsExpired checks if a refresh token has expired
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return !NowTimeFunc().Before(rt.ExpiresAt)
}

// HashToken is the storage key for a raw refresh token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
