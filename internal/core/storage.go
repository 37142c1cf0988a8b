package core

import (
	"fmt"
	"os"
	"strings"

	"aquacore/internal/infra/persistence/memory"
	"aquacore/internal/infra/persistence/postgres"
	"aquacore/internal/infra/persistence/sqlite"
	"aquacore/pkg/domain"
)

// Storage driver selection environment variables.
const (
	EnvStorageDriver = "AQUACORE_STORAGE_DRIVER"
	EnvSQLitePath    = "AQUACORE_SQLITE_PATH"
	EnvPostgresDSN   = "AQUACORE_POSTGRES_DSN"
)

// OpenSheetStore builds a sheet store from environment configuration.
// Supported drivers are "memory", "sqlite" (default), and "postgres".
func OpenSheetStore() (domain.SheetStore, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvStorageDriver)))
	switch driver {
	case "", "sqlite":
		return sqlite.NewStore(os.Getenv(EnvSQLitePath))
	case "postgres":
		return postgres.NewStore(os.Getenv(EnvPostgresDSN))
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
