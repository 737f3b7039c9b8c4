package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

// GetProtectedPrefixes lists the page path prefixes guarded by the session middleware
func (Session) GetProtectedPrefixes() []string {
	return GetEnvList("PROTECTED_PREFIXES", []string{"/admin", "/donor", "/project-manager"})
}

func (Session) GetAccessCookieMaxAge() int {
	return 60 * 60 // 1 hour
}

func (Session) GetRefreshCookieMaxAge() int {
	return 60 * 60 * 24 * 7 // 7 days
}

// GetProviderTimeout bounds each auth provider call made while gating a page request
func (Session) GetProviderTimeout() time.Duration {
	return GetEnvDuration("SESSION_PROVIDER_TIMEOUT", 5*time.Second)
}
