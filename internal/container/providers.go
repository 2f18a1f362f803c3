package container

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/garyjia/ggr-reconciler/internal/application/dispatcher"
	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/application/reconcile"
	"github.com/garyjia/ggr-reconciler/internal/application/service"
	"github.com/garyjia/ggr-reconciler/internal/application/session"
	"github.com/garyjia/ggr-reconciler/internal/application/workflow"
	"github.com/garyjia/ggr-reconciler/internal/infrastructure/export"
	"github.com/garyjia/ggr-reconciler/internal/infrastructure/external/reportingapi"
	"github.com/garyjia/ggr-reconciler/internal/infrastructure/persistence/repository"
	"github.com/garyjia/ggr-reconciler/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/ggr-reconciler/internal/infrastructure/storage"
	"github.com/garyjia/ggr-reconciler/migrations"
	"github.com/garyjia/ggr-reconciler/pkg/database"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	SqlDB *sql.DB
	DB    *sqlite.DB
}

// StorageBundle holds export-related components.
type StorageBundle struct {
	FileStorage port.FileStorage
	Exporter    port.ComparisonExporter
}

// ProvideDatabase opens the audit ledger and applies pending migrations.
// Migrations come from MigrationsDir when set, otherwise from the embedded set.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	var source fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		source = os.DirFS(cfg.MigrationsDir)
	}

	if err := database.NewMigrator(sqlDB, logger).Run(source); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		SqlDB: sqlDB,
		DB:    sqlite.NewDB(sqlDB, logger),
	}, nil
}

// ProvideRepositories creates the ledger repositories.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Reconciliation: repository.NewReconciliationRepository(db, logger),
		Transition:     repository.NewTransitionRepository(db, logger),
	}, nil
}

// ProvideReportingAPI creates the reporting service client.
func ProvideReportingAPI(cfg *ReportingAPIConfig, logger *zap.Logger) (port.ReportingAPI, error) {
	if cfg == nil {
		return nil, fmt.Errorf("reporting api config is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("reporting api base url is required")
	}

	return reportingapi.NewClient(reportingapi.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, logger), nil
}

// ProvideStorage creates the workbook exporter and, when configured, the archive storage.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	bundle := &StorageBundle{
		Exporter: export.NewWorkbookExporter(logger),
	}
	if cfg.ExportDir != "" {
		bundle.FileStorage = storage.NewLocalFileStorage(cfg.ExportDir, logger)
	}
	return bundle, nil
}

// ProvideDispatcher creates the event dispatcher with event logging attached.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	adapter := &zapLoggerAdapter{logger: logger.Named("events")}
	d := dispatcher.NewDispatcher(dispatcher.WithLogger(adapter))
	service.RegisterEventLogging(d, adapter)
	return d, nil
}

// ServiceDeps holds dependencies required for creating application services.
type ServiceDeps struct {
	API         port.ReportingAPI
	Repos       *RepositoryBundle
	Dispatcher  dispatcher.Dispatcher
	Storage     *StorageBundle
	HistorySize int
	Logger      *zap.Logger
}

// ProvideServices creates the lifecycle engine and the services built on it.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.API == nil {
		return nil, fmt.Errorf("reporting api is required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}

	lifecycle := workflow.NewEngine(deps.API, serviceLogger,
		workflow.WithDispatcher(deps.Dispatcher),
		workflow.WithTransitionRepository(deps.Repos.Transition),
	)

	engine := reconcile.NewEngine()
	catalog := service.NewReportCatalog(deps.API, serviceLogger)

	reconciliation := service.NewReconciliationService(catalog, engine, lifecycle, serviceLogger,
		service.WithLedger(deps.Repos.Reconciliation, deps.Repos.Transition),
		service.WithDispatcher(deps.Dispatcher),
		service.WithHistorySize(deps.HistorySize),
	)

	return &ServiceBundle{
		Catalog:        catalog,
		Lifecycle:      lifecycle,
		Reconciliation: reconciliation,
		Export:         service.NewExportService(catalog, engine, deps.Storage.Exporter, deps.Storage.FileStorage, serviceLogger),
		Workbenches:    session.NewManager(reconciliation),
	}, nil
}
