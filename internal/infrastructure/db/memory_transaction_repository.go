package db

import (
	"context"
	"fmt"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
	"github.com/damon-houk/transaction-manager/internal/domain/repository"
)

// MemoryTransactionRepository keeps transactions in a map for the lifetime
// of the process. It is not safe for concurrent use.
type MemoryTransactionRepository struct {
	transactions map[int]entity.Transaction
}

// NewMemoryTransactionRepository creates an empty in-memory repository
func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{transactions: make(map[int]entity.Transaction)}
}

// Store saves a transaction under its id
func (r *MemoryTransactionRepository) Store(ctx context.Context, tx entity.Transaction) error {
	if _, exists := r.transactions[tx.ID()]; exists {
		return fmt.Errorf("%w: %d", repository.ErrDuplicateTransaction, tx.ID())
	}

	r.transactions[tx.ID()] = tx
	return nil
}

// FindByID retrieves a transaction by its id
func (r *MemoryTransactionRepository) FindByID(ctx context.Context, id int) (entity.Transaction, error) {
	tx, ok := r.transactions[id]
	if !ok {
		return entity.Transaction{}, fmt.Errorf("%w: %d", repository.ErrTransactionNotFound, id)
	}

	return tx, nil
}

// Exists reports whether a transaction with the id is stored
func (r *MemoryTransactionRepository) Exists(ctx context.Context, id int) (bool, error) {
	_, ok := r.transactions[id]
	return ok, nil
}

// Count returns the number of stored transactions
func (r *MemoryTransactionRepository) Count(ctx context.Context) (int, error) {
	return len(r.transactions), nil
}
