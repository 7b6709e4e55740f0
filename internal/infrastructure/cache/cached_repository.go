package cache

import (
	"context"
	"time"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
	"github.com/damon-houk/transaction-manager/internal/domain/repository"
)

// CachedTransactionRepository serves repeated lookups from a TransactionCache
// and delegates everything else to the wrapped repository
type CachedTransactionRepository struct {
	next  repository.TransactionRepository
	cache *TransactionCache
}

// NewCachedTransactionRepository wraps next with a read cache
func NewCachedTransactionRepository(next repository.TransactionRepository, ttl time.Duration) *CachedTransactionRepository {
	return &CachedTransactionRepository{
		next:  next,
		cache: NewTransactionCache(ttl),
	}
}

// Store saves the transaction and primes the cache with it
func (r *CachedTransactionRepository) Store(ctx context.Context, tx entity.Transaction) error {
	if err := r.next.Store(ctx, tx); err != nil {
		return err
	}

	r.cache.Put(tx)
	return nil
}

// FindByID returns the cached transaction or loads it from the wrapped repository
func (r *CachedTransactionRepository) FindByID(ctx context.Context, id int) (entity.Transaction, error) {
	if tx, ok := r.cache.Get(id); ok {
		return tx, nil
	}

	tx, err := r.next.FindByID(ctx, id)
	if err != nil {
		return entity.Transaction{}, err
	}

	r.cache.Put(tx)
	return tx, nil
}

// Exists answers from the cache when it can
func (r *CachedTransactionRepository) Exists(ctx context.Context, id int) (bool, error) {
	if _, ok := r.cache.Get(id); ok {
		return true, nil
	}

	return r.next.Exists(ctx, id)
}

// Count always asks the wrapped repository
func (r *CachedTransactionRepository) Count(ctx context.Context) (int, error) {
	return r.next.Count(ctx)
}

