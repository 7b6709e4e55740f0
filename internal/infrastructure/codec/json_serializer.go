package codec

import (
	"encoding/json"
	"fmt"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
)

// DateLayout is the ISO-8601 calendar date used in serialized transactions
const DateLayout = "2006-01-02"

// TransactionDocument is the serialized form of a stored transaction
type TransactionDocument struct {
	ID              int         `json:"id"`
	TransactionDate string      `json:"transactionDate"`
	Amount          json.Number `json:"amount"`
}

// NewTransactionDocument projects a transaction onto its serialized form
func NewTransactionDocument(tx entity.Transaction) TransactionDocument {
	return TransactionDocument{
		ID:              tx.ID(),
		TransactionDate: tx.Date().Format(DateLayout),
		Amount:          json.Number(tx.Amount().StringFixed(entity.AmountScale)),
	}
}

// JSONSerializer renders transactions as single-line JSON objects
type JSONSerializer struct{}

// NewJSONSerializer creates a JSON serializer
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Serialize renders the transaction. The amount keeps exactly two fractional digits.
func (s *JSONSerializer) Serialize(tx entity.Transaction) (string, error) {
	data, err := json.Marshal(NewTransactionDocument(tx))
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction: %w", err)
	}

	return string(data), nil
}
