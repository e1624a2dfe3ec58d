package registry

import (
	"context"
	"fmt"
	"os"

	"assetregistry/internal/infra/archive"
	"assetregistry/internal/infra/persistence/file"
	"assetregistry/internal/infra/persistence/memory"
	"assetregistry/internal/infra/persistence/postgres"
	"assetregistry/internal/infra/persistence/sqlite"
	"assetregistry/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageFile     StorageDriver = "file"     // JSON document with archived backups (default)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to the JSON file driver when unset.
//
//	ASSETREGISTRY_STORAGE_DRIVER: file|sqlite|postgres|memory (default file)
//	ASSETREGISTRY_FILE_PATH: path to the registry document (default ./registry.json)
//	ASSETREGISTRY_SQLITE_PATH: path to sqlite file (default ./registry.db)
//	ASSETREGISTRY_POSTGRES_DSN: postgres DSN when driver=postgres
//	ASSETREGISTRY_ARCHIVE_*: backup archive selection for the file driver
func OpenPersistentStore(ctx context.Context, logger domain.Logger) (domain.PersistentStore, error) {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	driver := os.Getenv("ASSETREGISTRY_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageFile)
	}
	switch StorageDriver(driver) {
	case StorageFile:
		backups, err := archive.Open(ctx)
		if err != nil {
			return nil, err
		}
		path := os.Getenv("ASSETREGISTRY_FILE_PATH")
		fs, err := file.NewStore(path, backups, file.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return fs, nil
	case StorageSQLite:
		path := os.Getenv("ASSETREGISTRY_SQLITE_PATH")
		ss, err := sqlite.NewStore(path, sqlite.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return ss, nil
	case StoragePostgres:
		dsn := os.Getenv("ASSETREGISTRY_POSTGRES_DSN")
		ps, err := postgres.NewStore(dsn, postgres.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return ps, nil
	case StorageMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
