package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/impact-portal/identity"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	admin := &identity.Identity{Subject: "u-1", Role: users.RoleAdmin}
	donor := &identity.Identity{Subject: "u-2", Role: users.RoleDonor}

	require.NoError(t, identity.Authorize(admin, users.RoleAdmin))
	require.NoError(t, identity.Authorize(donor, users.RoleAdmin, users.RoleDonor))
	require.ErrorIs(t, identity.Authorize(donor, users.RoleAdmin), identity.ErrForbidden)
	require.ErrorIs(t, identity.Authorize(nil, users.RoleAdmin), identity.ErrInvalidToken)
	require.ErrorIs(t, identity.Authorize(&identity.Identity{Role: users.RoleAdmin}, users.RoleAdmin), identity.ErrInvalidToken)
	require.ErrorIs(t, identity.Authorize(&identity.Identity{Subject: "u-3"}, users.RoleDonor), identity.ErrForbidden)
}

type countingProvider struct {
	identity.Provider
	calls int
	fail  bool
}

func (p *countingProvider) GetUser(_ context.Context, token string) (*identity.Identity, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("provider down")
	}
	return &identity.Identity{Subject: "sub-" + token, Role: users.RoleDonor}, nil
}

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	cached := identity.NewCachedProvider(inner, 8, time.Minute)

	first, err := cached.GetUser(context.Background(), "a")
	require.NoError(t, err)
	second, err := cached.GetUser(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)

	_, err = cached.GetUser(context.Background(), "b")
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{fail: true}
	cached := identity.NewCachedProvider(inner, 8, time.Minute)

	_, err := cached.GetUser(context.Background(), "a")
	require.Error(t, err)
	_, err = cached.GetUser(context.Background(), "a")
	require.Error(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestCachedProviderForget(t *testing.T) {
	inner := &countingProvider{}
	cached := identity.NewCachedProvider(inner, 8, time.Minute)
	ctx := context.Background()

	for _, token := range []string{"a", "b"} {
		_, err := cached.GetUser(ctx, token)
		require.NoError(t, err)
	}
	require.Equal(t, 2, inner.calls)

	cached.Forget("a")
	_, err := cached.GetUser(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 3, inner.calls)

	cached.ForgetSubject("sub-b")
	_, err = cached.GetUser(ctx, "b")
	require.NoError(t, err)
	_, err = cached.GetUser(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 4, inner.calls, "only the forgotten subject is reloaded")
}
