package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/core"
)

// Wire representations of the domain types. Decimals marshal as JSON
// strings and unmarshal from either strings or numbers.

type budgetPayload struct {
	ID                  int64           `json:"id,omitempty"`
	Name                string          `json:"name"`
	Year                int             `json:"year,omitempty"`
	Month               int             `json:"month,omitempty"`
	IsTemplate          bool            `json:"is_template,omitempty"`
	PrimarySalary       decimal.Decimal `json:"primary_salary"`
	SecondaryIncome     decimal.Decimal `json:"secondary_income"`
	OtherIncome         decimal.Decimal `json:"other_income"`
	PartnerName         string          `json:"partner_name,omitempty"`
	PartnerContribution decimal.Decimal `json:"partner_contribution"`
	Notes               string          `json:"notes,omitempty"`
}

func (p budgetPayload) toDomain() core.HouseBudget {
	return core.HouseBudget{
		ID:                  p.ID,
		Name:                p.Name,
		Year:                p.Year,
		Month:               p.Month,
		IsTemplate:          p.IsTemplate,
		PrimarySalary:       p.PrimarySalary,
		SecondaryIncome:     p.SecondaryIncome,
		OtherIncome:         p.OtherIncome,
		PartnerName:         p.PartnerName,
		PartnerContribution: p.PartnerContribution,
		Notes:               p.Notes,
	}
}

func budgetFromDomain(b core.HouseBudget) budgetPayload {
	return budgetPayload{
		ID:                  b.ID,
		Name:                b.Name,
		Year:                b.Year,
		Month:               b.Month,
		IsTemplate:          b.IsTemplate,
		PrimarySalary:       b.PrimarySalary,
		SecondaryIncome:     b.SecondaryIncome,
		OtherIncome:         b.OtherIncome,
		PartnerName:         b.PartnerName,
		PartnerContribution: b.PartnerContribution,
		Notes:               b.Notes,
	}
}

func budgetsFromDomain(bs []core.HouseBudget) []budgetPayload {
	out := make([]budgetPayload, 0, len(bs))
	for _, b := range bs {
		out = append(out, budgetFromDomain(b))
	}
	return out
}

type lineItemPayload struct {
	ID           int64           `json:"id,omitempty"`
	BudgetID     int64           `json:"budget_id,omitempty"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	CategoryType string          `json:"category_type"`
	SplitType    string          `json:"split_type"`
	// Pointer so an omitted percentage can be told apart from an
	// explicit zero: omitted means an even 50/50 split.
	PrimarySharePercent *decimal.Decimal `json:"primary_share_percent,omitempty"`
	Group               string           `json:"group,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	Order               int              `json:"order,omitempty"`
}

func (p lineItemPayload) toDomain() core.BudgetLineItem {
	share := core.DefaultSharePercent
	if p.PrimarySharePercent != nil {
		share = *p.PrimarySharePercent
	}
	return core.BudgetLineItem{
		ID:                  p.ID,
		BudgetID:            p.BudgetID,
		Name:                p.Name,
		Amount:              p.Amount,
		CategoryType:        core.CategoryType(p.CategoryType),
		SplitType:           core.SplitType(p.SplitType),
		PrimarySharePercent: share,
		Group:               p.Group,
		Notes:               p.Notes,
		Order:               p.Order,
	}
}

func lineItemFromDomain(li core.BudgetLineItem) lineItemPayload {
	share := li.PrimarySharePercent
	return lineItemPayload{
		ID:                  li.ID,
		BudgetID:            li.BudgetID,
		Name:                li.Name,
		Amount:              li.Amount,
		CategoryType:        string(li.CategoryType),
		SplitType:           string(li.SplitType),
		PrimarySharePercent: &share,
		Group:               li.Group,
		Notes:               li.Notes,
		Order:               li.Order,
	}
}

func lineItemsFromDomain(lis []core.BudgetLineItem) []lineItemPayload {
	out := make([]lineItemPayload, 0, len(lis))
	for _, li := range lis {
		out = append(out, lineItemFromDomain(li))
	}
	return out
}

type changePayload struct {
	ID           int64     `json:"id"`
	BudgetID     int64     `json:"budget_id"`
	LineItemID   int64     `json:"line_item_id,omitempty"`
	LineItemName string    `json:"line_item_name,omitempty"`
	ChangeType   string    `json:"change_type"`
	FieldName    string    `json:"field_name,omitempty"`
	OldValue     string    `json:"old_value,omitempty"`
	NewValue     string    `json:"new_value,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func changesFromDomain(cs []core.BudgetChange) []changePayload {
	out := make([]changePayload, 0, len(cs))
	for _, c := range cs {
		out = append(out, changePayload{
			ID:           c.ID,
			BudgetID:     c.BudgetID,
			LineItemID:   c.LineItemID,
			LineItemName: c.LineItemName,
			ChangeType:   c.ChangeType,
			FieldName:    c.FieldName,
			OldValue:     c.OldValue,
			NewValue:     c.NewValue,
			Note:         c.Note,
			CreatedAt:    c.CreatedAt,
		})
	}
	return out
}

type portfolioPayload struct {
	ID             int64           `json:"id,omitempty"`
	Name           string          `json:"name"`
	PortfolioType  string          `json:"type"`
	RiskLevel      string          `json:"risk_level,omitempty"`
	Provider       string          `json:"provider,omitempty"`
	InitialValue   decimal.Decimal `json:"initial_value"`
	StartDate      time.Time       `json:"start_date,omitempty"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	YearStartValue decimal.Decimal `json:"year_start_value"`
	OwnerName      string          `json:"owner,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	IsActive       bool            `json:"is_active"`
}

func (p portfolioPayload) toDomain() core.Portfolio {
	return core.Portfolio{
		ID:             p.ID,
		Name:           p.Name,
		PortfolioType:  core.PortfolioType(p.PortfolioType),
		RiskLevel:      p.RiskLevel,
		Provider:       p.Provider,
		InitialValue:   p.InitialValue,
		StartDate:      p.StartDate,
		CurrentValue:   p.CurrentValue,
		YearStartValue: p.YearStartValue,
		OwnerName:      p.OwnerName,
		Notes:          p.Notes,
		IsActive:       p.IsActive,
	}
}

type portfolioResponse struct {
	portfolioPayload

	TotalGainLoss        decimal.Decimal `json:"total_gain_loss"`
	TotalGainLossPercent decimal.Decimal `json:"total_gain_loss_percent"`
	YTDGainLoss          decimal.Decimal `json:"ytd_gain_loss"`
	YTDGainLossPercent   decimal.Decimal `json:"ytd_gain_loss_percent"`
}

func portfolioFromDomain(p core.Portfolio) portfolioResponse {
	return portfolioResponse{
		portfolioPayload: portfolioPayload{
			ID:             p.ID,
			Name:           p.Name,
			PortfolioType:  string(p.PortfolioType),
			RiskLevel:      p.RiskLevel,
			Provider:       p.Provider,
			InitialValue:   p.InitialValue,
			StartDate:      p.StartDate,
			CurrentValue:   p.CurrentValue,
			YearStartValue: p.YearStartValue,
			OwnerName:      p.OwnerName,
			Notes:          p.Notes,
			IsActive:       p.IsActive,
		},
		TotalGainLoss:        p.TotalGainLoss(),
		TotalGainLossPercent: p.TotalGainLossPercent(),
		YTDGainLoss:          p.YTDGainLoss(),
		YTDGainLossPercent:   p.YTDGainLossPercent(),
	}
}

func portfoliosFromDomain(ps []core.Portfolio) []portfolioResponse {
	out := make([]portfolioResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, portfolioFromDomain(p))
	}
	return out
}

type snapshotPayload struct {
	ID          int64           `json:"id"`
	PortfolioID int64           `json:"portfolio_id"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Value       decimal.Decimal `json:"value"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func snapshotsFromDomain(ss []core.Snapshot) []snapshotPayload {
	out := make([]snapshotPayload, 0, len(ss))
	for _, s := range ss {
		out = append(out, snapshotPayload{
			ID:          s.ID,
			PortfolioID: s.PortfolioID,
			Year:        s.Year,
			Month:       s.Month,
			Value:       s.Value,
			Notes:       s.Notes,
			CreatedAt:   s.CreatedAt,
		})
	}
	return out
}

type transactionPayload struct {
	ID          int64           `json:"id,omitempty"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Account     string          `json:"account,omitempty"`
	Date        string          `json:"date"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// toDomain parses the transaction date, which travels as YYYY-MM-DD.
func (p transactionPayload) toDomain() (core.Transaction, error) {
	var date time.Time
	if p.Date != "" {
		d, err := time.Parse(time.DateOnly, p.Date)
		if err != nil {
			return core.Transaction{}, err
		}
		date = d
	}
	return core.Transaction{
		ID:          p.ID,
		Type:        core.TransactionType(p.Type),
		Amount:      p.Amount,
		Description: p.Description,
		Category:    p.Category,
		Account:     p.Account,
		Date:        date,
		Notes:       p.Notes,
	}, nil
}

func transactionFromDomain(t core.Transaction) transactionPayload {
	return transactionPayload{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Account:     t.Account,
		Date:        t.Date.Format(time.DateOnly),
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
	}
}

func transactionsFromDomain(ts []core.Transaction) []transactionPayload {
	out := make([]transactionPayload, 0, len(ts))
	for _, t := range ts {
		out = append(out, transactionFromDomain(t))
	}
	return out
}

type goalPayload struct {
	ID            int64           `json:"id,omitempty"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetDate    time.Time       `json:"target_date,omitempty"`
	IsCompleted   bool            `json:"is_completed,omitempty"`
}

func (p goalPayload) toDomain() core.SavingsGoal {
	return core.SavingsGoal{
		ID:            p.ID,
		Name:          p.Name,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		TargetDate:    p.TargetDate,
		IsCompleted:   p.IsCompleted,
	}
}

type goalResponse struct {
	goalPayload

	ProgressPercent decimal.Decimal `json:"progress_percent"`
	Remaining       decimal.Decimal `json:"remaining"`
}

func goalFromDomain(g core.SavingsGoal) goalResponse {
	return goalResponse{
		goalPayload: goalPayload{
			ID:            g.ID,
			Name:          g.Name,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			TargetDate:    g.TargetDate,
			IsCompleted:   g.IsCompleted,
		},
		ProgressPercent: g.ProgressPercent(),
		Remaining:       g.Remaining(),
	}
}

func goalsFromDomain(gs []core.SavingsGoal) []goalResponse {
	out := make([]goalResponse, 0, len(gs))
	for _, g := range gs {
		out = append(out, goalFromDomain(g))
	}
	return out
}
