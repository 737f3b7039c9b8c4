package refreshrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/impact-portal/identity/local/refresh"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens  map[string]*refresh.StoredRefreshToken
	userIDs map[string]string // user ID to token hash
	lock    sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens:  make(map[string]*refresh.StoredRefreshToken),
		userIDs: make(map[string]string),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(_ context.Context, refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	stored := *refreshToken
	tr.tokens[refreshToken.TokenHash] = &stored
	tr.userIDs[refreshToken.UserID] = refreshToken.TokenHash
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, tokenHash string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	rt, ok := tr.tokens[tokenHash]
	if !ok {
		return apperrors.ErrNotFound
	}
	if tr.userIDs[rt.UserID] == tokenHash {
		delete(tr.userIDs, rt.UserID)
	}
	delete(tr.tokens, tokenHash)
	return nil
}

func (tr *FakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tokenHash, ok := tr.userIDs[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(tr.tokens, tokenHash)
	delete(tr.userIDs, userID)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, tokenHash string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[tokenHash]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	stored := *rt
	return &stored, nil
}

// Len reports how many refresh tokens are stored
func (tr *FakeRefreshTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}
