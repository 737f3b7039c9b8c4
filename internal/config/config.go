package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	ProviderConfig
	DatabaseConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetLogLevel() string
	GetEnv() string
	IsProduction() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type SessionConfig interface {
	GetProtectedPrefixes() []string
	GetAccessCookieMaxAge() int
	GetRefreshCookieMaxAge() int
	GetProviderTimeout() time.Duration
}

type DatabaseConfig interface {
	GetDatabaseURL() string
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	Provider
	Database
	Security
}

func New() Config {
	return mainConfig{}
}
