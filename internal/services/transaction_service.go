package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/derive"
	"github.com/nisrj10/yieldly/internal/storage"
)

const (
	defaultSpendingMonths = 3
	maxSpendingMonths     = 24
)

// TransactionService keeps the dated ledger of account movements behind
// the month-over-month spending history.
type TransactionService struct {
	storage *storage.SQLiteRepository
}

func NewTransactionService(storage *storage.SQLiteRepository) *TransactionService {
	return &TransactionService{storage: storage}
}

func (s *TransactionService) Record(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("validate transaction: %w", err)
	}
	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return t, fmt.Errorf("record transaction: %w", err)
	}
	return created, nil
}

// ListTransactions returns the ledger in [from, to), newest first. Zero
// bounds are open.
func (s *TransactionService) ListTransactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, from, to)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	return s.storage.DeleteTransaction(ctx, id)
}

// MonthlySpending aggregates the ledger into per-month income, expenses
// and savings for the `months` calendar months ending at asOf. Months
// outside [1, 24] fall back to the three-month default or the cap.
func (s *TransactionService) MonthlySpending(ctx context.Context, asOf time.Time, months int) ([]derive.MonthSpend, error) {
	if months <= 0 {
		months = defaultSpendingMonths
	}
	if months > maxSpendingMonths {
		months = maxSpendingMonths
	}

	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := monthStart.AddDate(0, -(months - 1), 0)
	to := monthStart.AddDate(0, 1, 0)

	txns, err := s.storage.ListTransactions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return derive.MonthlySpending(txns, asOf, months), nil
}
