package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for readiness probes.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func scanDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

const budgetColumns = `id, name, month, year, is_template, primary_salary,
	secondary_income, other_income, partner_name, partner_contribution, notes`

func (r *SQLiteRepository) scanBudget(row interface{ Scan(...any) error }) (core.HouseBudget, error) {
	var (
		b                                                    core.HouseBudget
		primarySalary, secondaryIncome, otherIncome, contrib string
	)
	err := row.Scan(&b.ID, &b.Name, &b.Month, &b.Year, &b.IsTemplate,
		&primarySalary, &secondaryIncome, &otherIncome, &b.PartnerName, &contrib, &b.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	if err != nil {
		return b, fmt.Errorf("scan budget: %w", err)
	}
	b.PrimarySalary = scanDecimal(primarySalary)
	b.SecondaryIncome = scanDecimal(secondaryIncome)
	b.OtherIncome = scanDecimal(otherIncome)
	b.PartnerContribution = scanDecimal(contrib)
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.HouseBudget) (core.HouseBudget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO house_budgets (name, month, year, is_template, primary_salary,
			secondary_income, other_income, partner_name, partner_contribution, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Name, b.Month, b.Year, b.IsTemplate, b.PrimarySalary.String(),
		b.SecondaryIncome.String(), b.OtherIncome.String(), b.PartnerName,
		b.PartnerContribution.String(), b.Notes)
	if err != nil {
		return b, fmt.Errorf("create budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return b, fmt.Errorf("budget insert id: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.HouseBudget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM house_budgets WHERE id = ?`, id)
	return r.scanBudget(row)
}

// GetBudgetByPeriod returns the non-template budget for a calendar month.
func (r *SQLiteRepository) GetBudgetByPeriod(ctx context.Context, year, month int) (core.HouseBudget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM house_budgets
		 WHERE year = ? AND month = ? AND is_template = 0`, year, month)
	return r.scanBudget(row)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.HouseBudget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM house_budgets
		 ORDER BY is_template DESC, year DESC, month DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.HouseBudget
	for rows.Next() {
		b, err := r.scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.HouseBudget) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE house_budgets
		SET name = ?, month = ?, year = ?, is_template = ?, primary_salary = ?,
			secondary_income = ?, other_income = ?, partner_name = ?,
			partner_contribution = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		b.Name, b.Month, b.Year, b.IsTemplate, b.PrimarySalary.String(),
		b.SecondaryIncome.String(), b.OtherIncome.String(), b.PartnerName,
		b.PartnerContribution.String(), b.Notes, b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM house_budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

const itemColumns = `id, budget_id, name, amount, category_type, split_type,
	primary_share_percent, item_group, notes, sort_order`

func (r *SQLiteRepository) scanLineItem(row interface{ Scan(...any) error }) (core.BudgetLineItem, error) {
	var (
		li          core.BudgetLineItem
		amount, pct string
	)
	err := row.Scan(&li.ID, &li.BudgetID, &li.Name, &amount, &li.CategoryType,
		&li.SplitType, &pct, &li.Group, &li.Notes, &li.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return li, ErrNotFound
	}
	if err != nil {
		return li, fmt.Errorf("scan line item: %w", err)
	}
	li.Amount = scanDecimal(amount)
	li.PrimarySharePercent = scanDecimal(pct)
	return li, nil
}

func (r *SQLiteRepository) CreateLineItem(ctx context.Context, li core.BudgetLineItem) (core.BudgetLineItem, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_line_items (budget_id, name, amount, category_type,
			split_type, primary_share_percent, item_group, notes, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		li.BudgetID, li.Name, li.Amount.String(), li.CategoryType, li.SplitType,
		li.PrimarySharePercent.String(), li.Group, li.Notes, li.Order)
	if err != nil {
		return li, fmt.Errorf("create line item: %w", err)
	}
	li.ID, err = res.LastInsertId()
	if err != nil {
		return li, fmt.Errorf("line item insert id: %w", err)
	}
	return li, nil
}

func (r *SQLiteRepository) GetLineItem(ctx context.Context, id int64) (core.BudgetLineItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM budget_line_items WHERE id = ?`, id)
	return r.scanLineItem(row)
}

func (r *SQLiteRepository) ListLineItems(ctx context.Context, budgetID int64) ([]core.BudgetLineItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM budget_line_items
		 WHERE budget_id = ? ORDER BY sort_order, id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var items []core.BudgetLineItem
	for rows.Next() {
		li, err := r.scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) UpdateLineItem(ctx context.Context, li core.BudgetLineItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budget_line_items
		SET name = ?, amount = ?, category_type = ?, split_type = ?,
			primary_share_percent = ?, item_group = ?, notes = ?, sort_order = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		li.Name, li.Amount.String(), li.CategoryType, li.SplitType,
		li.PrimarySharePercent.String(), li.Group, li.Notes, li.Order, li.ID)
	if err != nil {
		return fmt.Errorf("update line item: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteLineItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_line_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete line item: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) RecordChange(ctx context.Context, c core.BudgetChange) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_change_log (budget_id, line_item_id, line_item_name,
			change_type, field_name, old_value, new_value, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.BudgetID, c.LineItemID, c.LineItemName, c.ChangeType,
		c.FieldName, c.OldValue, c.NewValue, c.Note)
	if err != nil {
		return fmt.Errorf("record change: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListChanges(ctx context.Context, budgetID int64, limit int) ([]core.BudgetChange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, budget_id, line_item_id, line_item_name, change_type,
			field_name, old_value, new_value, note, created_at
		FROM budget_change_log
		WHERE budget_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, budgetID, limit)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	defer rows.Close()

	var changes []core.BudgetChange
	for rows.Next() {
		var c core.BudgetChange
		if err := rows.Scan(&c.ID, &c.BudgetID, &c.LineItemID, &c.LineItemName,
			&c.ChangeType, &c.FieldName, &c.OldValue, &c.NewValue, &c.Note, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
