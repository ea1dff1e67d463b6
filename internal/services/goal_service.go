package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/amqp"
	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/storage"
)

// GoalService tracks savings goals and their completion state.
type GoalService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewGoalService(storage *storage.SQLiteRepository, publisher EventPublisher) *GoalService {
	return &GoalService{
		storage:   storage,
		publisher: publisher,
	}
}

func (s *GoalService) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return g, fmt.Errorf("validate goal: %w", err)
	}
	g.IsCompleted = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)

	created, err := s.storage.CreateGoal(ctx, g)
	if err != nil {
		return g, fmt.Errorf("create goal: %w", err)
	}
	s.publishEvent(ctx, created.ID)
	return created, nil
}

func (s *GoalService) GetGoal(ctx context.Context, id int64) (core.SavingsGoal, error) {
	return s.storage.GetGoal(ctx, id)
}

func (s *GoalService) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	return s.storage.ListGoals(ctx)
}

func (s *GoalService) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("validate goal: %w", err)
	}
	g.IsCompleted = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	if err := s.storage.UpdateGoal(ctx, g); err != nil {
		return err
	}
	s.publishEvent(ctx, g.ID)
	return nil
}

// AddFunds moves money into a goal and marks it completed when the
// target is reached.
func (s *GoalService) AddFunds(ctx context.Context, id int64, amount decimal.Decimal) (core.SavingsGoal, error) {
	if !amount.IsPositive() {
		return core.SavingsGoal{}, fmt.Errorf("add funds: %w", core.ErrInvalidAmount)
	}

	g, err := s.storage.GetGoal(ctx, id)
	if err != nil {
		return g, err
	}

	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.IsCompleted = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)

	if err := s.storage.UpdateGoal(ctx, g); err != nil {
		return g, fmt.Errorf("update goal: %w", err)
	}

	if g.IsCompleted {
		slog.InfoContext(ctx, "Savings goal completed",
			"goal", g.Name,
			"target", g.TargetAmount.String(),
			"saved", g.CurrentAmount.String())
	}

	s.publishEvent(ctx, g.ID)
	return g, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, id int64) error {
	if err := s.storage.DeleteGoal(ctx, id); err != nil {
		return err
	}
	s.publishEvent(ctx, id)
	return nil
}

func (s *GoalService) publishEvent(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, amqp.NewEventMessage(amqp.EventGoalUpdated, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event",
			"kind", amqp.EventGoalUpdated, "goal_id", id, "error", err)
	}
}
