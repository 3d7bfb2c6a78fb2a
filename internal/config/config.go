// Package config holds the environment configuration of the import parser.
// Values come from environment variables (optionally seeded from a .env file)
// with defaults, and are validated once at startup so a bad setting fails the
// run before any file is touched.
package config

import "time"

// Registry sources.
const (
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Registry RegistryConfig
	Database DatabaseConfig
	Keys     KeysConfig
	Logging  LoggingConfig
	Report   ReportConfig
	Metrics  MetricsConfig
}

// RegistryConfig selects where reference codes are read from.
type RegistryConfig struct {
	// Source is postgres or sqlite (default: postgres)
	Source string `env:"REGISTRY_SOURCE" default:"postgres"`

	// SQLitePath is the snapshot file used when Source is sqlite
	SQLitePath string `env:"REGISTRY_SQLITE_PATH" default:"registry.sqlite"`

	// LoadTimeout bounds the time spent materializing all mappings (default: 5m)
	LoadTimeout time.Duration `env:"REGISTRY_LOAD_TIMEOUT" default:"5m"`
}

// DatabaseConfig holds GeoNature/TaxHub database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, required for the postgres source.
	// Supports both DATABASE_URL and DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections kept open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// KeysConfig chooses which column acts as the code for some reference tables.
// A value of UUID selects the uuid column, anything else the name column.
type KeysConfig struct {
	Datasets              string `env:"FK_DATASETS"`
	Organisms             string `env:"FK_ORGANISMS"`
	AcquisitionFrameworks string `env:"FK_AF"`
	Users                 string `env:"FK_USERS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ReportConfig holds report export settings. Both can be overridden by flags.
type ReportConfig struct {
	// Dir is where report files are saved; empty means print only
	Dir string `env:"REPORT_DIR"`

	// Format is text, html or json (default: text)
	Format string `env:"REPORT_FORMAT" default:"text"`
}

// MetricsConfig holds run metrics export settings.
type MetricsConfig struct {
	// Textfile is a Prometheus textfile collector path; empty disables export
	Textfile string `env:"METRICS_TEXTFILE"`
}
