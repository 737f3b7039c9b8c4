package config

type SecurityConfig interface {
	GetLoginRateLimit() float64
	GetLoginBurst() int
	GetBootstrapAdminEmail() string
	GetBootstrapAdminPassword() string
	GetTrustedProxies() []string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetLoginRateLimit is the sustained number of login attempts per second per client
func (Security) GetLoginRateLimit() float64 {
	return GetEnvFloat("LOGIN_RATE", 0.5)
}

func (Security) GetLoginBurst() int {
	return GetEnvInt("LOGIN_BURST", 5)
}

func (Security) GetBootstrapAdminEmail() string {
	return GetEnv("ADMIN_EMAIL", "")
}

func (Security) GetBootstrapAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}

// GetTrustedProxies lists the proxy addresses or CIDR ranges whose
// X-Forwarded-For header is believed. Empty means the header is ignored.
func (Security) GetTrustedProxies() []string {
	return GetEnvList("TRUSTED_PROXIES", nil)
}
