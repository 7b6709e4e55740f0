package db

import (
	"fmt"

	"github.com/damon-houk/transaction-manager/internal/domain/repository"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/config"
)

// OpenTransactionRepository builds the repository for the configured backend.
// The returned close function releases the backend's resources.
func OpenTransactionRepository(cfg config.StoreConfig) (repository.TransactionRepository, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryTransactionRepository(), func() error { return nil }, nil

	case config.BackendBadger:
		badgerDB, err := OpenInMemoryBadger()
		if err != nil {
			return nil, nil, err
		}
		return NewBadgerTransactionRepository(badgerDB), badgerDB.Close, nil

	case config.BackendSQLite:
		sqlDB, err := OpenSQLite()
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteTransactionRepository(sqlDB), sqlDB.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %q", cfg.Backend)
	}
}
