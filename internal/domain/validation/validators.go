// Package validation turns raw user input into typed transaction fields.
package validation

import (
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted date input format (dd.mm.yyyy)
const DateLayout = "02.01.2006"

// Kind classifies a validation failure
type Kind int

const (
	// FormatError means the input does not have the expected syntax
	FormatError Kind = iota
	// RangeError means the input is well-formed but violates a business rule
	RangeError
)

// FieldError describes why a field value was rejected
type FieldError struct {
	Field   string
	Kind    Kind
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

var (
	ErrIDNotInteger  = &FieldError{Field: "id", Kind: FormatError, Message: "id is not an integer"}
	ErrIDNotPositive = &FieldError{Field: "id", Kind: RangeError, Message: "id must be greater than 0"}
	ErrDateFormat    = &FieldError{Field: "date", Kind: FormatError, Message: "invalid date format, expected dd.mm.yyyy"}
	ErrDateInFuture  = &FieldError{Field: "date", Kind: RangeError, Message: "date cannot be in the future"}
	ErrAmountFormat  = &FieldError{Field: "amount", Kind: FormatError, Message: "invalid amount format, expected #.##"}
)

var (
	datePattern   = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	amountPattern = regexp.MustCompile(`^-?\d+\.\d{2}$`)
)

// ParseID parses a transaction id. The format check runs before the range check.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrIDNotInteger
	}

	if id <= 0 {
		return 0, ErrIDNotPositive
	}

	return id, nil
}

// ParseDate parses a dd.mm.yyyy date and rejects dates after the calendar
// day of now. The time of day of now is ignored.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	if !datePattern.MatchString(raw) {
		return time.Time{}, ErrDateFormat
	}

	date, err := time.ParseInLocation(DateLayout, raw, now.Location())
	if err != nil {
		return time.Time{}, ErrDateFormat
	}

	if date.After(Today(now)) {
		return time.Time{}, ErrDateInFuture
	}

	return date, nil
}

// ParseAmount parses a signed amount with exactly two fractional digits
func ParseAmount(raw string) (decimal.Decimal, error) {
	if !amountPattern.MatchString(raw) {
		return decimal.Decimal{}, ErrAmountFormat
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, ErrAmountFormat
	}

	return amount, nil
}

// Today truncates now to midnight of its calendar day
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
