package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits every amount carries
const AmountScale = 2

var (
	// ErrInvalidID is returned when a transaction id is not positive
	ErrInvalidID = errors.New("id must be greater than 0")
	// ErrMissingDate is returned when a transaction has no date
	ErrMissingDate = errors.New("transaction date is required")
	// ErrInvalidAmountScale is returned when an amount has more than two fractional digits
	ErrInvalidAmountScale = errors.New("amount must have at most two fractional digits")
	// ErrIncompleteTransaction is returned when a builder is missing a field
	ErrIncompleteTransaction = errors.New("transaction is incomplete")
)

// Transaction represents a registered financial transaction.
// It is immutable once created.
type Transaction struct {
	id     int
	date   time.Time
	amount decimal.Decimal
}

// NewTransaction creates a validated transaction
func NewTransaction(id int, date time.Time, amount decimal.Decimal) (Transaction, error) {
	tx := Transaction{
		id:     id,
		date:   date,
		amount: amount,
	}

	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}

	return tx, nil
}

// ID returns the transaction id
func (t Transaction) ID() int {
	return t.id
}

// Date returns the calendar date of the transaction
func (t Transaction) Date() time.Time {
	return t.date
}

// Amount returns the signed transaction amount
func (t Transaction) Amount() decimal.Decimal {
	return t.amount
}

// Validate ensures the transaction meets all requirements
func (t Transaction) Validate() error {
	if t.id <= 0 {
		return ErrInvalidID
	}

	if t.date.IsZero() {
		return ErrMissingDate
	}

	if !t.amount.Equal(t.amount.Round(AmountScale)) {
		return ErrInvalidAmountScale
	}

	return nil
}

// TransactionBuilder collects the fields of a transaction that is still
// being entered. Nothing built from it is visible until Build succeeds.
type TransactionBuilder struct {
	id     int
	date   time.Time
	amount decimal.Decimal

	hasID, hasDate, hasAmount bool
}

// NewTransactionBuilder creates an empty builder
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{}
}

// SetID records the transaction id
func (b *TransactionBuilder) SetID(id int) *TransactionBuilder {
	b.id = id
	b.hasID = true
	return b
}

// SetDate records the transaction date
func (b *TransactionBuilder) SetDate(date time.Time) *TransactionBuilder {
	b.date = date
	b.hasDate = true
	return b
}

// SetAmount records the transaction amount
func (b *TransactionBuilder) SetAmount(amount decimal.Decimal) *TransactionBuilder {
	b.amount = amount
	b.hasAmount = true
	return b
}

// ID returns the id recorded so far and whether one was set
func (b *TransactionBuilder) ID() (int, bool) {
	return b.id, b.hasID
}

// Complete reports whether every field has been set
func (b *TransactionBuilder) Complete() bool {
	return b.hasID && b.hasDate && b.hasAmount
}

// Build converts the builder into an immutable transaction
func (b *TransactionBuilder) Build() (Transaction, error) {
	if !b.Complete() {
		return Transaction{}, ErrIncompleteTransaction
	}

	return NewTransaction(b.id, b.date, b.amount)
}
