package repository

import (
	"context"
	"errors"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
)

var (
	// ErrTransactionNotFound is returned when no transaction has the requested id
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateTransaction is returned when a transaction with the same id is already stored
	ErrDuplicateTransaction = errors.New("transaction already exists")
)

// TransactionRepository defines the interface for transaction storage.
// Stored transactions are never updated or removed.
type TransactionRepository interface {
	// Store saves a transaction under its id
	Store(ctx context.Context, tx entity.Transaction) error

	// FindByID retrieves a transaction by its id
	FindByID(ctx context.Context, id int) (entity.Transaction, error)

	// Exists reports whether a transaction with the id is stored
	Exists(ctx context.Context, id int) (bool, error)

	// Count returns the number of stored transactions
	Count(ctx context.Context) (int, error)
}
