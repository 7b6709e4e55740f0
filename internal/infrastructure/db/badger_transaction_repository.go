package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
	"github.com/damon-houk/transaction-manager/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

var keyPrefix = []byte("tx:")

// BadgerTransactionRepository implements the transaction repository interface using BadgerDB
type BadgerTransactionRepository struct {
	db *badger.DB
}

// NewBadgerTransactionRepository creates a new BadgerDB transaction repository
func NewBadgerTransactionRepository(db *badger.DB) *BadgerTransactionRepository {
	return &BadgerTransactionRepository{db: db}
}

// OpenInMemoryBadger opens a BadgerDB instance that lives only in memory
func OpenInMemoryBadger() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable Badger's default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	return db, nil
}

// Store saves a transaction under its id
func (r *BadgerTransactionRepository) Store(ctx context.Context, tx entity.Transaction) error {
	// Serialize transaction to JSON
	data, err := json.Marshal(newTransactionRecord(tx))
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	key := transactionKey(tx.ID())

	// The existence check and the write share one badger transaction
	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("%w: %d", repository.ErrDuplicateTransaction, tx.ID())
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, data)
	})

	if errors.Is(err, repository.ErrDuplicateTransaction) {
		return err
	}

	if err != nil {
		return fmt.Errorf("failed to store transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction by its id
func (r *BadgerTransactionRepository) FindByID(ctx context.Context, id int) (entity.Transaction, error) {
	var record transactionRecord

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(transactionKey(id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return entity.Transaction{}, fmt.Errorf("%w: %d", repository.ErrTransactionNotFound, id)
	}

	if err != nil {
		return entity.Transaction{}, fmt.Errorf("failed to retrieve transaction: %w", err)
	}

	return record.toEntity(time.Local)
}

// Exists reports whether a transaction with the id is stored
func (r *BadgerTransactionRepository) Exists(ctx context.Context, id int) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(transactionKey(id))
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}

	return true, nil
}

// Count returns the number of stored transactions
func (r *BadgerTransactionRepository) Count(ctx context.Context) (int, error) {
	count := 0

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}
