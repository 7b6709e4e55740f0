package db

import (
	"fmt"
	"time"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const recordDateLayout = "2006-01-02"

// transactionRecord is the storage representation shared by the badger and
// sqlite backends
type transactionRecord struct {
	ID     int    `json:"id"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

func newTransactionRecord(tx entity.Transaction) transactionRecord {
	return transactionRecord{
		ID:     tx.ID(),
		Date:   tx.Date().Format(recordDateLayout),
		Amount: tx.Amount().StringFixed(entity.AmountScale),
	}
}

func (r transactionRecord) toEntity(loc *time.Location) (entity.Transaction, error) {
	date, err := time.ParseInLocation(recordDateLayout, r.Date, loc)
	if err != nil {
		return entity.Transaction{}, fmt.Errorf("failed to parse stored date %q: %w", r.Date, err)
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return entity.Transaction{}, fmt.Errorf("failed to parse stored amount %q: %w", r.Amount, err)
	}

	return entity.NewTransaction(r.ID, date, amount)
}

func transactionKey(id int) []byte {
	return []byte(fmt.Sprintf("tx:%d", id))
}
