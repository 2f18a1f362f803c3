// Package container provides dependency injection and lifecycle management
// for the GGR reconciliation service following Clean Architecture principles.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration for the audit ledger
	Database DatabaseConfig

	// ReportingAPI configuration
	ReportingAPI ReportingAPIConfig

	// Auth configuration
	Auth AuthConfig

	// Storage configuration
	Storage StorageConfig

	// Session configuration
	Session SessionConfig

	// Server configuration
	Server ServerConfig

	// HistorySize caps the comparisons returned per report
	HistorySize int
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string
}

// ReportingAPIConfig holds settings for the external reporting service.
type ReportingAPIConfig struct {
	// BaseURL of the reporting service
	BaseURL string

	// Timeout for each request
	Timeout time.Duration
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// JWTSecret is the HS256 shared secret
	JWTSecret string
}

// StorageConfig holds file storage settings.
type StorageConfig struct {
	// ExportDir archives exported workbooks; empty disables archiving
	ExportDir string
}

// SessionConfig holds workbench settings.
type SessionConfig struct {
	// IdleTimeout after which a workbench is discarded
	IdleTimeout time.Duration

	// PruneInterval between idle sweeps
	PruneInterval time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/reconciliation.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		ReportingAPI: ReportingAPIConfig{
			Timeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			ExportDir: "exports",
		},
		Session: SessionConfig{
			IdleTimeout:   2 * time.Hour,
			PruneInterval: 10 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		HistorySize: 50,
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.ReportingAPI.BaseURL == "" {
		return fmt.Errorf("reporting_api.base_url is required")
	}
	if c.ReportingAPI.Timeout <= 0 {
		return fmt.Errorf("reporting_api.timeout must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	return nil
}
