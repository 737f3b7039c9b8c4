package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var _ Provider = (*CachedProvider)(nil)

// CachedProvider remembers successful GetUser results for a short TTL so that
// a burst of API calls with the same access token costs one provider round trip.
// Failures and every other operation go straight to the wrapped provider.
//
// A cached identity outlives a revocation or role change made at the provider
// for up to the TTL. Changes made through this process are evicted with
// Forget and ForgetSubject.
type CachedProvider struct {
	Provider
	identities *expirable.LRU[string, Identity]
}

func NewCachedProvider(p Provider, size int, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		Provider:   p,
		identities: expirable.NewLRU[string, Identity](size, nil, ttl),
	}
}

func (c *CachedProvider) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	key := tokenKey(accessToken)
	if id, ok := c.identities.Get(key); ok {
		return &id, nil
	}
	id, err := c.Provider.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if id != nil {
		c.identities.Add(key, *id)
	}
	return id, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Forget drops the cached identity for an access token
func (c *CachedProvider) Forget(accessToken string) {
	c.identities.Remove(tokenKey(accessToken))
}

// ForgetSubject drops every cached identity that belongs to subject
func (c *CachedProvider) ForgetSubject(subject string) {
	for _, key := range c.identities.Keys() {
		if id, ok := c.identities.Peek(key); ok && id.Subject == subject {
			c.identities.Remove(key)
		}
	}
}
