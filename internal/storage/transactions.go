package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nisrj10/yieldly/internal/core"
)

const transactionColumns = `id, tx_type, amount, description, category,
	account, tx_date, notes, created_at`

func (r *SQLiteRepository) scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t      core.Transaction
		amount string
	)
	err := row.Scan(&t.ID, &t.Type, &amount, &t.Description, &t.Category,
		&t.Account, &t.Date, &t.Notes, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	t.Amount = scanDecimal(amount)
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (tx_type, amount, description, category, account, tx_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Type, t.Amount.String(), t.Description, t.Category, t.Account, t.Date, t.Notes)
	if err != nil {
		return t, fmt.Errorf("create transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return t, fmt.Errorf("transaction insert id: %w", err)
	}
	t.CreatedAt = time.Now().UTC()
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return r.scanTransaction(row)
}

// ListTransactions returns transactions dated in [from, to), newest first.
// A zero bound is open on that side.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var (
		clauses []string
		args    []any
	)
	if !from.IsZero() {
		clauses = append(clauses, `tx_date >= ?`)
		args = append(args, from)
	}
	if !to.IsZero() {
		clauses = append(clauses, `tx_date < ?`)
		args = append(args, to)
	}
	for i, c := range clauses {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY tx_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}
