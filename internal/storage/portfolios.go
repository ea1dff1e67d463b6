package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nisrj10/yieldly/internal/core"
)

const portfolioColumns = `id, name, portfolio_type, risk_level, provider,
	initial_value, start_date, current_value, year_start_value, owner_name,
	notes, is_active`

func (r *SQLiteRepository) scanPortfolio(row interface{ Scan(...any) error }) (core.Portfolio, error) {
	var (
		p                                     core.Portfolio
		initialValue, currentValue, yearStart string
		startDate                             sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &p.PortfolioType, &p.RiskLevel, &p.Provider,
		&initialValue, &startDate, &currentValue, &yearStart, &p.OwnerName,
		&p.Notes, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("scan portfolio: %w", err)
	}
	p.InitialValue = scanDecimal(initialValue)
	p.CurrentValue = scanDecimal(currentValue)
	p.YearStartValue = scanDecimal(yearStart)
	if startDate.Valid {
		p.StartDate = startDate.Time
	}
	return p, nil
}

func (r *SQLiteRepository) CreatePortfolio(ctx context.Context, p core.Portfolio) (core.Portfolio, error) {
	var startDate any
	if !p.StartDate.IsZero() {
		startDate = p.StartDate
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolios (name, portfolio_type, risk_level, provider,
			initial_value, start_date, current_value, year_start_value,
			owner_name, notes, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.PortfolioType, p.RiskLevel, p.Provider,
		p.InitialValue.String(), startDate, p.CurrentValue.String(),
		p.YearStartValue.String(), p.OwnerName, p.Notes, p.IsActive)
	if err != nil {
		return p, fmt.Errorf("create portfolio: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return p, fmt.Errorf("portfolio insert id: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetPortfolio(ctx context.Context, id int64) (core.Portfolio, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE id = ?`, id)
	return r.scanPortfolio(row)
}

func (r *SQLiteRepository) ListPortfolios(ctx context.Context, includeInactive bool) ([]core.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []core.Portfolio
	for rows.Next() {
		p, err := r.scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, rows.Err()
}

func (r *SQLiteRepository) UpdatePortfolio(ctx context.Context, p core.Portfolio) error {
	var startDate any
	if !p.StartDate.IsZero() {
		startDate = p.StartDate
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE portfolios
		SET name = ?, portfolio_type = ?, risk_level = ?, provider = ?,
			initial_value = ?, start_date = ?, current_value = ?,
			year_start_value = ?, owner_name = ?, notes = ?, is_active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Name, p.PortfolioType, p.RiskLevel, p.Provider,
		p.InitialValue.String(), startDate, p.CurrentValue.String(),
		p.YearStartValue.String(), p.OwnerName, p.Notes, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("update portfolio: %w", err)
	}
	return requireRow(res)
}

// UpsertSnapshot records the portfolio value for one month, replacing any
// earlier value recorded in the same month.
func (r *SQLiteRepository) UpsertSnapshot(ctx context.Context, s core.Snapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolio_snapshots (portfolio_id, year, month, value, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, year, month)
		DO UPDATE SET value = excluded.value, notes = excluded.notes`,
		s.PortfolioID, s.Year, s.Month, s.Value.String(), s.Notes)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListSnapshots(ctx context.Context, portfolioID int64) ([]core.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, portfolio_id, year, month, value, notes, created_at
		FROM portfolio_snapshots
		WHERE portfolio_id = ?
		ORDER BY year, month`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []core.Snapshot
	for rows.Next() {
		var (
			s     core.Snapshot
			value string
		)
		if err := rows.Scan(&s.ID, &s.PortfolioID, &s.Year, &s.Month, &value, &s.Notes, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Value = scanDecimal(value)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	var targetDate any
	if !g.TargetDate.IsZero() {
		targetDate = g.TargetDate
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals (name, target_amount, current_amount, target_date, is_completed)
		VALUES (?, ?, ?, ?, ?)`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), targetDate, g.IsCompleted)
	if err != nil {
		return g, fmt.Errorf("create goal: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return g, fmt.Errorf("goal insert id: %w", err)
	}
	g.CreatedAt = time.Now().UTC()
	return g, nil
}

func (r *SQLiteRepository) scanGoal(row interface{ Scan(...any) error }) (core.SavingsGoal, error) {
	var (
		g             core.SavingsGoal
		target, saved string
		targetDate    sql.NullTime
	)
	err := row.Scan(&g.ID, &g.Name, &target, &saved, &targetDate, &g.IsCompleted, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	if err != nil {
		return g, fmt.Errorf("scan goal: %w", err)
	}
	g.TargetAmount = scanDecimal(target)
	g.CurrentAmount = scanDecimal(saved)
	if targetDate.Valid {
		g.TargetDate = targetDate.Time
	}
	return g, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, target_amount, current_amount, target_date, is_completed, created_at
		FROM savings_goals WHERE id = ?`, id)
	return r.scanGoal(row)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_amount, current_amount, target_date, is_completed, created_at
		FROM savings_goals ORDER BY is_completed, name, id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := r.scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	var targetDate any
	if !g.TargetDate.IsZero() {
		targetDate = g.TargetDate
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE savings_goals
		SET name = ?, target_amount = ?, current_amount = ?, target_date = ?,
			is_completed = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), targetDate,
		g.IsCompleted, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}
