package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryExpense    CategoryType = "expense"
	CategorySaving     CategoryType = "saving"
	CategoryInvestment CategoryType = "investment"
)

const (
	SplitShared      SplitType = "shared"
	SplitPrimaryOnly SplitType = "primary_only"
	SplitPartnerOnly SplitType = "partner_only"
)

// GroupIncome marks line items that are inbound transfers into the shared
// pot rather than outflows. They are excluded from spending breakdowns.
const GroupIncome = "Income"

// GroupOther is the bucket for line items with a blank group label.
const GroupOther = "Other"

type (
	CategoryType string

	SplitType string

	// HouseBudget is the household income declaration for one budget
	// period. Template budgets carry no month/year and are duplicated
	// into month instances.
	HouseBudget struct {
		ID                  int64
		Name                string
		Month               int // 1-12, 0 for templates
		Year                int // 0 for templates
		IsTemplate          bool
		PrimarySalary       decimal.Decimal
		SecondaryIncome     decimal.Decimal
		OtherIncome         decimal.Decimal
		PartnerName         string
		PartnerContribution decimal.Decimal
		Notes               string
	}

	// BudgetLineItem is one budgeted expense/saving/investment entry
	// with a split rule dividing its cost between the two members.
	BudgetLineItem struct {
		ID                  int64
		BudgetID            int64
		Name                string
		Amount              decimal.Decimal
		CategoryType        CategoryType
		SplitType           SplitType
		PrimarySharePercent decimal.Decimal // only read when SplitType is shared
		Group               string
		Notes               string
		Order               int
	}

	// BudgetChange is one append-only audit row recorded on every
	// budget or line-item mutation.
	BudgetChange struct {
		ID           int64
		BudgetID     int64
		LineItemID   int64
		LineItemName string
		ChangeType   string // create, update, delete
		FieldName    string
		OldValue     string
		NewValue     string
		Note         string
		CreatedAt    time.Time
	}
)

var (
	ErrNegativeAmount      = errors.New("amount cannot be negative")
	ErrInvalidPercent      = errors.New("share percent must be between 0 and 100")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidSplitType    = errors.New("invalid split type")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidMonth        = errors.New("invalid month")
)

var hundred = decimal.NewFromInt(100)

// DefaultSharePercent is the split applied to a shared line item created
// without an explicit percentage: an even 50/50.
var DefaultSharePercent = decimal.NewFromInt(50)

func (c CategoryType) Validate() error {
	switch c {
	case CategoryExpense, CategorySaving, CategoryInvestment:
		return nil
	default:
		return ErrInvalidCategoryType
	}
}

func (s SplitType) Validate() error {
	switch s {
	case SplitShared, SplitPrimaryOnly, SplitPartnerOnly:
		return nil
	default:
		return ErrInvalidSplitType
	}
}

func (b HouseBudget) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !b.IsTemplate {
		if b.Month < 1 || b.Month > 12 {
			return ErrInvalidMonth
		}
		if b.Year < 2000 || b.Year > 2200 {
			return errors.New("invalid year")
		}
	}
	for _, v := range []decimal.Decimal{b.PrimarySalary, b.SecondaryIncome, b.OtherIncome, b.PartnerContribution} {
		if v.IsNegative() {
			return ErrNegativeAmount
		}
	}
	return nil
}

// TotalIncome is the declared household income across all sources.
func (b HouseBudget) TotalIncome() decimal.Decimal {
	return b.PrimarySalary.Add(b.SecondaryIncome).Add(b.OtherIncome).Add(b.PartnerContribution)
}

func (li BudgetLineItem) Validate() error {
	if len(strings.TrimSpace(li.Name)) == 0 {
		return ErrEmptyName
	}
	if len(li.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if li.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if err := li.CategoryType.Validate(); err != nil {
		return err
	}
	if err := li.SplitType.Validate(); err != nil {
		return err
	}
	if li.SplitType == SplitShared {
		if li.PrimarySharePercent.IsNegative() || li.PrimarySharePercent.GreaterThan(hundred) {
			return ErrInvalidPercent
		}
	}
	if len(li.Notes) > 255 {
		return errors.New("notes too long (max 255 characters)")
	}
	return nil
}

// GroupLabel returns the display group, bucketing blank labels under "Other".
func (li BudgetLineItem) GroupLabel() string {
	g := strings.TrimSpace(li.Group)
	if g == "" {
		return GroupOther
	}
	return g
}
