package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nisrj10/yieldly/internal/amqp"
	"github.com/nisrj10/yieldly/internal/core"
	"github.com/nisrj10/yieldly/internal/storage"
)

// EventPublisher pushes change notifications to the export queue. A nil
// publisher disables eventing without disabling writes.
type EventPublisher interface {
	PublishEvent(ctx context.Context, msg *amqp.EventMessage) error
}

// BudgetService orchestrates budget and line-item writes: validation,
// persistence, audit logging, and change events.
type BudgetService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewBudgetService(storage *storage.SQLiteRepository, publisher EventPublisher) *BudgetService {
	return &BudgetService{
		storage:   storage,
		publisher: publisher,
	}
}

func (s *BudgetService) CreateBudget(ctx context.Context, b core.HouseBudget) (core.HouseBudget, error) {
	if err := b.Validate(); err != nil {
		return b, fmt.Errorf("validate budget: %w", err)
	}

	created, err := s.storage.CreateBudget(ctx, b)
	if err != nil {
		return b, fmt.Errorf("create budget: %w", err)
	}

	s.recordChange(ctx, core.BudgetChange{
		BudgetID:   created.ID,
		ChangeType: "create",
		Note:       fmt.Sprintf("budget %q created", created.Name),
	})
	s.publish(ctx, amqp.EventBudgetChanged, created.ID)

	return created, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, id int64) (core.HouseBudget, error) {
	return s.storage.GetBudget(ctx, id)
}

func (s *BudgetService) ListBudgets(ctx context.Context) ([]core.HouseBudget, error) {
	return s.storage.ListBudgets(ctx)
}

func (s *BudgetService) UpdateBudget(ctx context.Context, b core.HouseBudget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validate budget: %w", err)
	}

	old, err := s.storage.GetBudget(ctx, b.ID)
	if err != nil {
		return err
	}

	if err := s.storage.UpdateBudget(ctx, b); err != nil {
		return fmt.Errorf("update budget: %w", err)
	}

	for _, change := range diffBudgets(old, b) {
		s.recordChange(ctx, change)
	}
	s.publish(ctx, amqp.EventBudgetChanged, b.ID)

	return nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, id int64) error {
	if err := s.storage.DeleteBudget(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EventBudgetChanged, id)
	return nil
}

// DuplicateBudget copies a budget and all of its line items into a new
// budget for the given month, typically from a template.
func (s *BudgetService) DuplicateBudget(ctx context.Context, sourceID int64, name string, year, month int) (core.HouseBudget, error) {
	source, err := s.storage.GetBudget(ctx, sourceID)
	if err != nil {
		return core.HouseBudget{}, err
	}
	items, err := s.storage.ListLineItems(ctx, sourceID)
	if err != nil {
		return core.HouseBudget{}, err
	}

	dup := source
	dup.ID = 0
	dup.Name = name
	dup.Year = year
	dup.Month = month
	dup.IsTemplate = false
	if err := dup.Validate(); err != nil {
		return dup, fmt.Errorf("validate duplicated budget: %w", err)
	}

	created, err := s.storage.CreateBudget(ctx, dup)
	if err != nil {
		return dup, fmt.Errorf("create duplicated budget: %w", err)
	}

	for _, item := range items {
		item.ID = 0
		item.BudgetID = created.ID
		if _, err := s.storage.CreateLineItem(ctx, item); err != nil {
			return created, fmt.Errorf("copy line item %q: %w", item.Name, err)
		}
	}

	s.recordChange(ctx, core.BudgetChange{
		BudgetID:   created.ID,
		ChangeType: "create",
		Note:       fmt.Sprintf("duplicated from budget %d with %d items", sourceID, len(items)),
	})
	s.publish(ctx, amqp.EventBudgetChanged, created.ID)

	return created, nil
}

func (s *BudgetService) AddLineItem(ctx context.Context, li core.BudgetLineItem) (core.BudgetLineItem, error) {
	if err := li.Validate(); err != nil {
		return li, fmt.Errorf("validate line item: %w", err)
	}
	if _, err := s.storage.GetBudget(ctx, li.BudgetID); err != nil {
		return li, err
	}

	created, err := s.storage.CreateLineItem(ctx, li)
	if err != nil {
		return li, fmt.Errorf("create line item: %w", err)
	}

	s.recordChange(ctx, core.BudgetChange{
		BudgetID:     created.BudgetID,
		LineItemID:   created.ID,
		LineItemName: created.Name,
		ChangeType:   "create",
		NewValue:     created.Amount.String(),
	})
	s.publish(ctx, amqp.EventBudgetChanged, created.BudgetID)

	return created, nil
}

func (s *BudgetService) GetLineItem(ctx context.Context, id int64) (core.BudgetLineItem, error) {
	return s.storage.GetLineItem(ctx, id)
}

func (s *BudgetService) ListLineItems(ctx context.Context, budgetID int64) ([]core.BudgetLineItem, error) {
	return s.storage.ListLineItems(ctx, budgetID)
}

func (s *BudgetService) UpdateLineItem(ctx context.Context, li core.BudgetLineItem) error {
	if err := li.Validate(); err != nil {
		return fmt.Errorf("validate line item: %w", err)
	}

	old, err := s.storage.GetLineItem(ctx, li.ID)
	if err != nil {
		return err
	}
	li.BudgetID = old.BudgetID

	if err := s.storage.UpdateLineItem(ctx, li); err != nil {
		return fmt.Errorf("update line item: %w", err)
	}

	for _, change := range diffLineItems(old, li) {
		s.recordChange(ctx, change)
	}
	s.publish(ctx, amqp.EventBudgetChanged, li.BudgetID)

	return nil
}

func (s *BudgetService) DeleteLineItem(ctx context.Context, id int64) error {
	old, err := s.storage.GetLineItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteLineItem(ctx, id); err != nil {
		return err
	}

	s.recordChange(ctx, core.BudgetChange{
		BudgetID:     old.BudgetID,
		LineItemID:   old.ID,
		LineItemName: old.Name,
		ChangeType:   "delete",
		OldValue:     old.Amount.String(),
	})
	s.publish(ctx, amqp.EventBudgetChanged, old.BudgetID)

	return nil
}

func (s *BudgetService) ListChanges(ctx context.Context, budgetID int64, limit int) ([]core.BudgetChange, error) {
	return s.storage.ListChanges(ctx, budgetID, limit)
}

// recordChange writes an audit row. Audit failures are logged, not
// surfaced, so a broken log never blocks the mutation itself.
func (s *BudgetService) recordChange(ctx context.Context, c core.BudgetChange) {
	if err := s.storage.RecordChange(ctx, c); err != nil {
		slog.ErrorContext(ctx, "Failed to record budget change",
			"budget_id", c.BudgetID, "change_type", c.ChangeType, "error", err)
	}
}

func (s *BudgetService) publish(ctx context.Context, kind string, entityID int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, amqp.NewEventMessage(kind, entityID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event",
			"kind", kind, "entity_id", entityID, "error", err)
	}
}

func diffBudgets(old, updated core.HouseBudget) []core.BudgetChange {
	fields := []struct {
		name     string
		oldValue string
		newValue string
	}{
		{"name", old.Name, updated.Name},
		{"primary_salary", old.PrimarySalary.String(), updated.PrimarySalary.String()},
		{"secondary_income", old.SecondaryIncome.String(), updated.SecondaryIncome.String()},
		{"other_income", old.OtherIncome.String(), updated.OtherIncome.String()},
		{"partner_name", old.PartnerName, updated.PartnerName},
		{"partner_contribution", old.PartnerContribution.String(), updated.PartnerContribution.String()},
		{"notes", old.Notes, updated.Notes},
	}

	var changes []core.BudgetChange
	for _, f := range fields {
		if f.oldValue == f.newValue {
			continue
		}
		changes = append(changes, core.BudgetChange{
			BudgetID:   updated.ID,
			ChangeType: "update",
			FieldName:  f.name,
			OldValue:   f.oldValue,
			NewValue:   f.newValue,
		})
	}
	return changes
}

func diffLineItems(old, updated core.BudgetLineItem) []core.BudgetChange {
	fields := []struct {
		name     string
		oldValue string
		newValue string
	}{
		{"name", old.Name, updated.Name},
		{"amount", old.Amount.String(), updated.Amount.String()},
		{"category_type", string(old.CategoryType), string(updated.CategoryType)},
		{"split_type", string(old.SplitType), string(updated.SplitType)},
		{"primary_share_percent", old.PrimarySharePercent.String(), updated.PrimarySharePercent.String()},
		{"group", old.Group, updated.Group},
	}

	var changes []core.BudgetChange
	for _, f := range fields {
		if f.oldValue == f.newValue {
			continue
		}
		changes = append(changes, core.BudgetChange{
			BudgetID:     updated.BudgetID,
			LineItemID:   updated.ID,
			LineItemName: updated.Name,
			ChangeType:   "update",
			FieldName:    f.name,
			OldValue:     f.oldValue,
			NewValue:     f.newValue,
		})
	}
	return changes
}
