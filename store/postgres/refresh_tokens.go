package postgres

import (
	"context"

	"github.com/jrsteele09/impact-portal/identity/local/refresh"
)

var _ refresh.Repo = (*RefreshTokenRepo)(nil)

type RefreshTokenRepo struct {
	db DB
}

func NewRefreshTokenRepo(db DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

func (r *RefreshTokenRepo) Upsert(ctx context.Context, rt *refresh.StoredRefreshToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id, iat, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash, iat = EXCLUDED.iat, expires_at = EXCLUDED.expires_at`,
		rt.TokenHash, rt.UserID, rt.Iat, rt.ExpiresAt)
	return mapError(err, "failed to store refresh token")
}

func (r *RefreshTokenRepo) Delete(ctx context.Context, tokenHash string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return mapError(err, "failed to delete refresh token")
	}
	return requireAffected(tag)
}

func (r *RefreshTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return mapError(err, "failed to delete refresh token for user %s", userID)
	}
	return requireAffected(tag)
}

func (r *RefreshTokenRepo) Get(ctx context.Context, tokenHash string) (*refresh.StoredRefreshToken, error) {
	var rt refresh.StoredRefreshToken
	err := r.db.QueryRow(ctx, `
		SELECT token_hash, user_id, iat, expires_at
		FROM refresh_tokens
		WHERE token_hash = $1`, tokenHash).Scan(&rt.TokenHash, &rt.UserID, &rt.Iat, &rt.ExpiresAt)
	if err != nil {
		return nil, mapError(err, "failed to get refresh token")
	}
	return &rt, nil
}
