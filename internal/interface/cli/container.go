package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"

	"github.com/atelierlabs/obswork/internal/adapter/gateway/storage"
	"github.com/atelierlabs/obswork/internal/app/config"
	"github.com/atelierlabs/obswork/internal/application/port/output"
	"github.com/atelierlabs/obswork/internal/application/usecase/observation"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
	"github.com/atelierlabs/obswork/internal/domain/repository"
	"github.com/atelierlabs/obswork/internal/domain/service"
	"github.com/atelierlabs/obswork/internal/infrastructure/persistence/sqlite"
)

// Container wires the use cases to their infrastructure for one command
// invocation
type Container struct {
	Config      config.Config
	Catalog     *catalog.Catalog
	Records     repository.RecordRepository
	Versioning  *service.VersioningService
	Recording   *observation.RecordingUseCase
	Provision   *observation.ProvisioningUseCase
	Reports     *observation.ReportUseCase
	Attachments output.AttachmentGateway

	db *sql.DB
}

// NewContainer opens the database, loads the catalog and builds the use
// cases from the given configuration
func NewContainer(cfg config.Config) (*Container, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.DatabasePath()); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlite.NewMigrator(db).Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	gateway, err := buildAttachmentGateway(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	records := sqlite.NewRecordRepository(db, cat)
	versioning := service.NewVersioningService(records)

	return &Container{
		Config:      cfg,
		Catalog:     cat,
		Records:     records,
		Versioning:  versioning,
		Recording:   observation.NewRecordingUseCase(records, versioning, cat),
		Provision:   observation.NewProvisioningUseCase(records),
		Reports:     observation.NewReportUseCase(records, cat),
		Attachments: gateway,
		db:          db,
	}, nil
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// loadCatalog returns the embedded catalog or the configured override
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath() == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(afero.NewOsFs(), cfg.CatalogPath())
	if err != nil {
		return nil, fmt.Errorf("load catalog override %s: %w", cfg.CatalogPath(), err)
	}
	return cat, nil
}

// buildAttachmentGateway selects the configured attachment backend
func buildAttachmentGateway(cfg config.Config) (output.AttachmentGateway, error) {
	switch cfg.AttachmentBackend() {
	case "s3":
		return storage.NewS3AttachmentGateway(storage.S3Config{
			BucketName: cfg.S3Bucket(),
			Prefix:     cfg.S3Prefix(),
			Region:     cfg.S3Region(),
		})
	default:
		return storage.NewLocalAttachmentGateway(cfg.AttachmentDir())
	}
}
