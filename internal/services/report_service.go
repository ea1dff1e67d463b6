package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/derive"
	"github.com/nisrj10/yieldly/internal/storage"
)

// ErrNoBudget is returned when no budget exists for the requested period.
var ErrNoBudget = errors.New("no budget for period")

// ReportService assembles one consistent input snapshot from storage and
// hands it to the derivation engine. All date arithmetic takes an
// explicit as-of date so the same request always yields the same report.
type ReportService struct {
	storage *storage.SQLiteRepository
	engine  *derive.Engine
}

func NewReportService(storage *storage.SQLiteRepository, engine *derive.Engine) *ReportService {
	return &ReportService{
		storage: storage,
		engine:  engine,
	}
}

// BuildReport derives the full report for the budget covering asOf's
// month, falling back to the most recent month budget when that month
// has none yet.
func (s *ReportService) BuildReport(ctx context.Context, asOf time.Time) (derive.Report, error) {
	budget, err := s.storage.GetBudgetByPeriod(ctx, asOf.Year(), int(asOf.Month()))
	if errors.Is(err, storage.ErrNotFound) {
		budget, err = s.latestMonthBudget(ctx)
	}
	if err != nil {
		return derive.Report{}, err
	}
	return s.BuildReportForBudget(ctx, budget.ID, asOf)
}

// BuildReportForBudget derives the full report for one specific budget.
func (s *ReportService) BuildReportForBudget(ctx context.Context, budgetID int64, asOf time.Time) (derive.Report, error) {
	budget, err := s.storage.GetBudget(ctx, budgetID)
	if err != nil {
		return derive.Report{}, err
	}

	items, err := s.storage.ListLineItems(ctx, budget.ID)
	if err != nil {
		return derive.Report{}, fmt.Errorf("load line items: %w", err)
	}
	portfolios, err := s.storage.ListPortfolios(ctx, false)
	if err != nil {
		return derive.Report{}, fmt.Errorf("load portfolios: %w", err)
	}
	goals, err := s.storage.ListGoals(ctx)
	if err != nil {
		return derive.Report{}, fmt.Errorf("load goals: %w", err)
	}

	return s.engine.Derive(derive.Inputs{
		Budget:     budget,
		LineItems:  items,
		Portfolios: portfolios,
		Goals:      goals,
	}, asOf), nil
}

func (s *ReportService) latestMonthBudget(ctx context.Context) (core.HouseBudget, error) {
	budgets, err := s.storage.ListBudgets(ctx)
	if err != nil {
		return core.HouseBudget{}, err
	}
	for _, b := range budgets {
		if !b.IsTemplate {
			return b, nil
		}
	}
	return core.HouseBudget{}, ErrNoBudget
}
