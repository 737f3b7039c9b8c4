package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/impact-portal/identity"
	"github.com/jrsteele09/impact-portal/identity/local"
	"github.com/jrsteele09/impact-portal/identity/local/refresh"
	refreshrepofake "github.com/jrsteele09/impact-portal/identity/local/refresh/repofake"
	"github.com/jrsteele09/impact-portal/identity/oidcprovider"
	fakeindicatorrepo "github.com/jrsteele09/impact-portal/indicators/repofake"
	"github.com/jrsteele09/impact-portal/internal/config"
	fakeprojectrepo "github.com/jrsteele09/impact-portal/projects/repofake"
	"github.com/jrsteele09/impact-portal/server"
	"github.com/jrsteele09/impact-portal/store/postgres"
	fakeuserrepo "github.com/jrsteele09/impact-portal/users/repofake"
	"github.com/rs/zerolog/log"
)

type store struct {
	repos       server.Repos
	refreshRepo refresh.Repo
	pool        *pgxpool.Pool
}

func (s *store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// openStore uses Postgres when DATABASE_URL is set and in-memory repositories otherwise
func openStore(ctx context.Context, c config.DatabaseConfig) (*store, error) {
	dsn := c.GetDatabaseURL()
	if dsn == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory storage")
		return &store{
			repos: server.Repos{
				Users:      fakeuserrepo.NewFakeUserRepo(),
				Projects:   fakeprojectrepo.NewFakeProjectRepo(),
				Indicators: fakeindicatorrepo.NewFakeIndicatorRepo(),
			},
			refreshRepo: refreshrepofake.NewFakeRefreshTokenRepo(),
		}, nil
	}

	pool, err := postgres.Open(ctx, dsn, postgres.PoolConfig{})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Msg("Connected to Postgres")

	return &store{
		repos: server.Repos{
			Users:      postgres.NewUserRepo(pool),
			Projects:   postgres.NewProjectRepo(pool),
			Indicators: postgres.NewIndicatorRepo(pool),
		},
		refreshRepo: postgres.NewRefreshTokenRepo(pool),
		pool:        pool,
	}, nil
}

func newIdentityProvider(ctx context.Context, c config.Config, st *store) (identity.Provider, error) {
	var provider identity.Provider

	switch c.GetAuthProvider() {
	case config.ProviderOIDC:
		p, err := oidcprovider.New(ctx, oidcprovider.Config{
			Issuer:       c.GetOIDCIssuer(),
			ClientID:     c.GetOIDCClientID(),
			ClientSecret: c.GetOIDCClientSecret(),
			SignUpURL:    c.GetOIDCSignUpURL(),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("issuer", c.GetOIDCIssuer()).Msg("Using OIDC identity provider")
		provider = p

	case config.ProviderLocal, "":
		secret, err := jwtSecret(c)
		if err != nil {
			return nil, err
		}
		provider = local.New(
			st.repos.Users,
			refresh.NewManager(st.refreshRepo, c.GetRefreshTokenExpiry(), c.GetRefreshTokenLength()),
			local.NewTokenIssuer(secret, c.GetJWTIssuer(), c.GetAccessTokenExpiry()),
		)
		log.Info().Msg("Using local identity provider")

	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", c.GetAuthProvider())
	}

	if ttl := c.GetIdentityCacheTTL(); ttl > 0 {
		log.Info().Dur("ttl", ttl).Int("size", c.GetIdentityCacheSize()).Msg("Identity cache enabled")
		provider = identity.NewCachedProvider(provider, c.GetIdentityCacheSize(), ttl)
	}
	return provider, nil
}

// jwtSecret refuses to run production without a configured secret. Outside
// production a random secret is generated, so sessions do not survive restarts.
func jwtSecret(c config.Config) (string, error) {
	if secret := c.GetJWTSecret(); secret != "" {
		return secret, nil
	}
	if c.IsProduction() {
		return "", fmt.Errorf("JWT_SECRET must be set in production")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	log.Warn().Msg("JWT_SECRET not set, using a random secret for this process")
	return hex.EncodeToString(b), nil
}
