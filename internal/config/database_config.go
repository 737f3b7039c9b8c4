package config

type Database struct{}

var _ DatabaseConfig = Database{}

// GetDatabaseURL returns the Postgres DSN. Empty means in-memory storage.
func (Database) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}
