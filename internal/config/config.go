// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Archive  ArchiveConfig
	Database DatabaseConfig
	Clone    CloneConfig
	Extract  ExtractConfig
	Server   ServerConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ArchiveConfig locates the FERC Form 1 archive on disk.
type ArchiveConfig struct {
	// DataDir holds one directory per year (default: data/ferc1)
	DataDir string `env:"FERC1_DATA_DIR" default:"data/ferc1"`

	// YearDir is the fmt pattern of a year's directory name (default: f1_%d)
	YearDir string `env:"FERC1_YEAR_DIR" default:"f1_%d"`

	// CatalogFile is the database container name inside a year directory
	CatalogFile string `env:"FERC1_CATALOG_FILE" default:"F1_PUB.DBC"`

	// Years are the years for which data exists. Accepts ranges: 1994-2017
	Years []int `env:"FERC1_YEARS" default:"1994-2017"`

	// RefYear is the year whose catalog and headers define the schema (default: 2017)
	RefYear int `env:"FERC1_REF_YEAR" default:"2017"`

	// DBCMinLength is the shortest printable run read from the catalog (default: 4)
	DBCMinLength int `env:"FERC1_DBC_MIN_LENGTH" default:"4"`

	// Encoding is the IANA name of the character field encoding (default: iso-8859-1)
	Encoding string `env:"FERC1_ENCODING" default:"iso-8859-1"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver selects the store backend: sqlite or postgres (default: sqlite)
	Driver string `env:"DB_DRIVER" default:"sqlite"`

	// SQLitePath is the database file used by the sqlite driver
	SQLitePath string `env:"SQLITE_PATH" default:"ferc1.sqlite"`

	// URL is the PostgreSQL connection string (required for postgres)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// ForeignKeys creates and enforces references to the respondent table (default: true)
	ForeignKeys bool `env:"DB_FOREIGN_KEYS" default:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// CloneConfig controls rebuilding the store from the archive.
type CloneConfig struct {
	// Tables limits the clone to these tables (default: every known table)
	Tables []string `env:"FERC1_TABLES"`

	// BadColumns are table.column pairs never cloned
	BadColumns []string `env:"FERC1_BAD_COLUMNS"`

	// DenylistFile is an optional YAML file adding bad columns and respondents
	DenylistFile string `env:"FERC1_DENYLIST_FILE"`

	// BatchSize is the number of rows written per transaction (default: 100000)
	BatchSize int `env:"CLONE_BATCH_SIZE" default:"100000"`

	// Workers is the number of tables decoded concurrently (default: 1)
	Workers int `env:"CLONE_WORKERS" default:"1"`

	// Timeout is the maximum duration of a clone (default: 2h)
	Timeout time.Duration `env:"CLONE_TIMEOUT" default:"2h"`
}

// ExtractConfig controls the extraction boundary.
type ExtractConfig struct {
	// WorkingYears are the years integrated downstream. Accepts ranges
	WorkingYears []int `env:"FERC1_WORKING_YEARS" default:"2004-2017"`

	// BadRespondents are respondent IDs excluded from every extract
	BadRespondents []int `env:"FERC1_BAD_RESPONDENTS" default:"514,515,516,517,518,519,522"`

	// Timeout is the maximum duration of one extract (default: 5m)
	Timeout time.Duration `env:"EXTRACT_TIMEOUT" default:"5m"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 5m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey rejects API requests without a valid X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.SQLitePath
}
