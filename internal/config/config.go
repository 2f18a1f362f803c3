package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	ReportingAPI   ReportingAPIConfig   `mapstructure:"reporting_api"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Export         ExportConfig         `mapstructure:"export"`
	Session        SessionConfig        `mapstructure:"session"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Logger         LoggerConfig         `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds audit ledger configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// ReportingAPIConfig holds the external reporting service configuration
type ReportingAPIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=16"`
}

// ExportConfig holds workbook archive configuration
type ExportConfig struct {
	ArchiveDir string `mapstructure:"archive_dir"`
}

// SessionConfig holds workbench configuration
type SessionConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// ReconciliationConfig holds comparison history configuration
type ReconciliationConfig struct {
	HistorySize int `mapstructure:"history_size" validate:"min=1,max=1000"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/reconciliation.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Reporting API defaults
	v.SetDefault("reporting_api.timeout", 15*time.Second)

	// Export defaults
	v.SetDefault("export.archive_dir", "exports")

	// Session defaults
	v.SetDefault("session.idle_timeout", 2*time.Hour)
	v.SetDefault("session.prune_interval", 10*time.Minute)

	v.SetDefault("reconciliation.history_size", 50)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"reporting_api.base_url": "REPORTING_API_BASE_URL",
		"auth.jwt_secret":        "AUTH_JWT_SECRET",
		"database.path":          "DATABASE_PATH",
		"logger.level":           "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Session.PruneInterval > 0 && c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session.idle_timeout is required when pruning is enabled")
	}
	return nil
}
