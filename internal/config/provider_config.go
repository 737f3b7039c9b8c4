package config

import "time"

const (
	ProviderLocal = "local"
	ProviderOIDC  = "oidc"
)

type ProviderConfig interface {
	GetAuthProvider() string
	GetJWTSecret() string
	GetJWTIssuer() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCSignUpURL() string
	GetIdentityCacheTTL() time.Duration
	GetIdentityCacheSize() int
}

type Provider struct{}

var _ ProviderConfig = Provider{}

// GetAuthProvider selects the identity backend: "local" (self-hosted) or "oidc"
func (Provider) GetAuthProvider() string {
	return GetEnv("AUTH_PROVIDER", ProviderLocal)
}

// GetJWTSecret has no default. Production refuses to start without one.
func (Provider) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "")
}

func (Provider) GetJWTIssuer() string {
	return GetEnv("JWT_ISSUER", "impact-portal")
}

func (Provider) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration("ACCESS_TOKEN_EXPIRY", 1*time.Hour)
}

func (Provider) GetRefreshTokenExpiry() time.Duration {
	return GetEnvDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
}

func (Provider) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (Provider) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (Provider) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Provider) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

// GetOIDCSignUpURL is the registration endpoint of the external identity service, if it has one
func (Provider) GetOIDCSignUpURL() string {
	return GetEnv("OIDC_SIGNUP_URL", "")
}

// GetIdentityCacheTTL of zero disables identity caching. With caching on, a
// token revoked or a role changed directly at the provider is honoured only
// once the cached entry expires; logout and user updates here evict at once.
func (Provider) GetIdentityCacheTTL() time.Duration {
	return GetEnvDuration("IDENTITY_CACHE_TTL", 0)
}

func (Provider) GetIdentityCacheSize() int {
	return GetEnvInt("IDENTITY_CACHE_SIZE", 1024)
}
