package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/amqp"
	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/storage"
)

// PortfolioService handles portfolio writes and the monthly snapshot
// trail behind them.
type PortfolioService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewPortfolioService(storage *storage.SQLiteRepository, publisher EventPublisher) *PortfolioService {
	return &PortfolioService{
		storage:   storage,
		publisher: publisher,
	}
}

func (s *PortfolioService) CreatePortfolio(ctx context.Context, p core.Portfolio) (core.Portfolio, error) {
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("validate portfolio: %w", err)
	}
	if p.CurrentValue.IsZero() {
		p.CurrentValue = p.InitialValue
	}
	if p.YearStartValue.IsZero() {
		p.YearStartValue = p.InitialValue
	}

	created, err := s.storage.CreatePortfolio(ctx, p)
	if err != nil {
		return p, fmt.Errorf("create portfolio: %w", err)
	}
	s.publishEvent(ctx, amqp.EventPortfolioUpdated, created.ID)
	return created, nil
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, id int64) (core.Portfolio, error) {
	return s.storage.GetPortfolio(ctx, id)
}

func (s *PortfolioService) ListPortfolios(ctx context.Context, includeInactive bool) ([]core.Portfolio, error) {
	return s.storage.ListPortfolios(ctx, includeInactive)
}

func (s *PortfolioService) UpdatePortfolio(ctx context.Context, p core.Portfolio) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate portfolio: %w", err)
	}
	if err := s.storage.UpdatePortfolio(ctx, p); err != nil {
		return err
	}
	s.publishEvent(ctx, amqp.EventPortfolioUpdated, p.ID)
	return nil
}

// UpdateValue records a new current value and writes the snapshot for
// asOf's month. Repeated updates within a month replace that month's
// snapshot rather than stacking rows.
func (s *PortfolioService) UpdateValue(ctx context.Context, id int64, value decimal.Decimal, notes string, asOf time.Time) (core.Portfolio, error) {
	if value.IsNegative() {
		return core.Portfolio{}, core.ErrNegativeAmount
	}

	p, err := s.storage.GetPortfolio(ctx, id)
	if err != nil {
		return p, err
	}

	p.CurrentValue = value
	if err := s.storage.UpdatePortfolio(ctx, p); err != nil {
		return p, fmt.Errorf("update portfolio value: %w", err)
	}

	if err := s.storage.UpsertSnapshot(ctx, core.Snapshot{
		PortfolioID: id,
		Year:        asOf.Year(),
		Month:       int(asOf.Month()),
		Value:       value,
		Notes:       notes,
	}); err != nil {
		return p, fmt.Errorf("record snapshot: %w", err)
	}

	s.publishEvent(ctx, amqp.EventPortfolioUpdated, id)
	return p, nil
}

// Deactivate retires a portfolio from every derived view while keeping
// its history.
func (s *PortfolioService) Deactivate(ctx context.Context, id int64) error {
	p, err := s.storage.GetPortfolio(ctx, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	if err := s.storage.UpdatePortfolio(ctx, p); err != nil {
		return err
	}
	s.publishEvent(ctx, amqp.EventPortfolioUpdated, id)
	return nil
}

func (s *PortfolioService) ListSnapshots(ctx context.Context, portfolioID int64) ([]core.Snapshot, error) {
	return s.storage.ListSnapshots(ctx, portfolioID)
}

func (s *PortfolioService) publishEvent(ctx context.Context, kind string, entityID int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, amqp.NewEventMessage(kind, entityID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event",
			"kind", kind, "entity_id", entityID, "error", err)
	}
}
