package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
	"github.com/damon-houk/transaction-manager/internal/domain/repository"
	"github.com/mattn/go-sqlite3"
)

// Schema defines the SQL statements to create the transactions table.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY,            -- user supplied, never reused
    transaction_date TEXT NOT NULL,    -- YYYY-MM-DD
    amount TEXT NOT NULL               -- fixed two fractional digits
);
`

// SQLiteTransactionRepository stores transactions in an in-memory SQLite database
type SQLiteTransactionRepository struct {
	db *sql.DB
}

// OpenSQLite opens an in-memory SQLite database and initializes the schema.
// The pool is limited to one connection because every :memory: connection
// is a separate database.
func OpenSQLite() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// NewSQLiteTransactionRepository creates a repository over an opened database
func NewSQLiteTransactionRepository(db *sql.DB) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{db: db}
}

// Store saves a transaction under its id
func (r *SQLiteTransactionRepository) Store(ctx context.Context, tx entity.Transaction) error {
	record := newTransactionRecord(tx)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, transaction_date, amount) VALUES (?, ?, ?)`,
		record.ID, record.Date, record.Amount,
	)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return fmt.Errorf("%w: %d", repository.ErrDuplicateTransaction, tx.ID())
	}

	if err != nil {
		return fmt.Errorf("failed to store transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction by its id
func (r *SQLiteTransactionRepository) FindByID(ctx context.Context, id int) (entity.Transaction, error) {
	var record transactionRecord

	err := r.db.QueryRowContext(ctx,
		`SELECT id, transaction_date, amount FROM transactions WHERE id = ?`, id,
	).Scan(&record.ID, &record.Date, &record.Amount)

	if errors.Is(err, sql.ErrNoRows) {
		return entity.Transaction{}, fmt.Errorf("%w: %d", repository.ErrTransactionNotFound, id)
	}

	if err != nil {
		return entity.Transaction{}, fmt.Errorf("failed to retrieve transaction: %w", err)
	}

	return record.toEntity(time.Local)
}

// Exists reports whether a transaction with the id is stored
func (r *SQLiteTransactionRepository) Exists(ctx context.Context, id int) (bool, error) {
	var count int

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}

	return count > 0, nil
}

// Count returns the number of stored transactions
func (r *SQLiteTransactionRepository) Count(ctx context.Context) (int, error) {
	var count int

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}
