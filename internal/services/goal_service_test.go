package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

func TestGoalService_AddFundsCompletesGoal(t *testing.T) {
	svc := NewGoalService(newTestStorage(t), nil)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, core.SavingsGoal{
		Name:          "House deposit",
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(900),
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}
	if g.IsCompleted {
		t.Fatal("goal should not be completed at 900/1000")
	}

	g, err = svc.AddFunds(ctx, g.ID, decimal.NewFromInt(150))
	if err != nil {
		t.Fatalf("AddFunds() error = %v", err)
	}
	if !g.CurrentAmount.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("AddFunds() CurrentAmount = %s, want 1050", g.CurrentAmount)
	}
	if !g.IsCompleted {
		t.Error("AddFunds() should complete the goal once target is reached")
	}
}

func TestGoalService_AddFundsRejectsNonPositive(t *testing.T) {
	svc := NewGoalService(newTestStorage(t), nil)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, core.SavingsGoal{
		Name:         "Holiday",
		TargetAmount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}

	if _, err := svc.AddFunds(ctx, g.ID, decimal.Zero); err == nil {
		t.Error("AddFunds(0) should fail")
	}
	if _, err := svc.AddFunds(ctx, g.ID, decimal.NewFromInt(-5)); err == nil {
		t.Error("AddFunds(-5) should fail")
	}
}

func TestGoalService_CreateAlreadyFunded(t *testing.T) {
	svc := NewGoalService(newTestStorage(t), nil)

	g, err := svc.CreateGoal(context.Background(), core.SavingsGoal{
		Name:          "Boiler",
		TargetAmount:  decimal.NewFromInt(300),
		CurrentAmount: decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}
	if !g.IsCompleted {
		t.Error("goal funded at creation should be marked completed")
	}
}
