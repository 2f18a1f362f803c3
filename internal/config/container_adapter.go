package config

import (
	"github.com/garyjia/ggr-reconciler/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		ReportingAPI: container.ReportingAPIConfig{
			BaseURL: c.ReportingAPI.BaseURL,
			Timeout: c.ReportingAPI.Timeout,
		},
		Auth: container.AuthConfig{
			JWTSecret: c.Auth.JWTSecret,
		},
		Storage: container.StorageConfig{
			ExportDir: c.Export.ArchiveDir,
		},
		Session: container.SessionConfig{
			IdleTimeout:   c.Session.IdleTimeout,
			PruneInterval: c.Session.PruneInterval,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
		HistorySize: c.Reconciliation.HistorySize,
	}
}
