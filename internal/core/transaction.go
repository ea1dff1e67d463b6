package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

type (
	TransactionType string

	// Transaction is one dated movement of money on a household account,
	// the raw material for month-over-month spending history.
	Transaction struct {
		ID          int64
		Type        TransactionType
		Amount      decimal.Decimal
		Description string
		Category    string
		Account     string
		Date        time.Time
		Notes       string
		CreatedAt   time.Time
	}
)

var ErrInvalidTransactionType = errors.New("invalid transaction type")

func (t TransactionType) Validate() error {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return nil
	default:
		return ErrInvalidTransactionType
	}
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyName
	}
	if len(t.Description) > 255 {
		return errors.New("description too long (max 255 characters)")
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return errors.New("missing transaction date")
	}
	return nil
}
