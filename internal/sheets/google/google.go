package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nisrj10/yieldly/internal/derive"
	ports "github.com/nisrj10/yieldly/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client exports derived reports to a Google Sheets dashboard tab using
// service-account credentials.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportExporter = (*Client)(nil)

// New creates a Sheets exporter. Credentials come from credentialsJSON
// when provided, otherwise from the file path.
func New(ctx context.Context, spreadsheetID, sheetName, credentialsFile, credentialsJSON string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Dashboard"
	}

	var creds []byte
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		creds = []byte(credentialsJSON)
	case strings.TrimSpace(credentialsFile) != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing Google credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "sheet", sheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// ExportReport rewrites the dashboard tab with the report contents.
func (c *Client) ExportReport(ctx context.Context, r derive.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rows := ReportRows(r)

	clearRange := fmt.Sprintf("%s!A1:D1000", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("write sheet %s: %w", c.sheetName, err)
	}

	ref := fmt.Sprintf("%s!A1:D%d", c.sheetName, len(rows))
	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"ref", ref, "rows", len(rows))
	return ref, nil
}

// ReportRows flattens a report into spreadsheet rows.
func ReportRows(r derive.Report) [][]any {
	money := func(d decimal.Decimal) string { return d.StringFixed(2) }

	rows := [][]any{
		{"Household budget report", r.AsOf.Format(time.DateOnly)},
		{},
		{"Budget", r.Budget.Name},
		{"Total income", money(r.Budget.TotalIncome)},
		{"Total expenses", money(r.Budget.TotalExpenses)},
		{"Total savings", money(r.Budget.TotalSavings)},
		{"Total investments", money(r.Budget.TotalInvestments)},
		{"Monthly buffer", money(r.Budget.MonthlyBuffer)},
		{},
		{"Available pot", money(r.CashFlow.AvailablePot)},
		{"Remaining", money(r.CashFlow.Remaining)},
		{"Savings rate %", r.CashFlow.SavingsRate.StringFixed(1)},
		{},
		{"Spending by group", "Expenses", "Savings"},
	}

	for _, g := range r.Breakdown.Groups {
		rows = append(rows, []any{g.Group, money(g.ExpenseTotal), money(g.SavingTotal)})
	}

	rows = append(rows,
		[]any{},
		[]any{"Net worth", money(r.NetWorth.FamilyTotal)},
		[]any{"Investments", money(r.NetWorth.TotalInvestments)},
		[]any{"Savings", money(r.NetWorth.TotalSavings)},
		[]any{"Pots", money(r.NetWorth.TotalPots)},
		[]any{"Emergency fund", money(r.NetWorth.EmergencyFundTotal)},
		[]any{"Months covered", r.NetWorth.MonthsCovered.StringFixed(1)},
	)

	for _, o := range r.NetWorth.ByOwner {
		rows = append(rows, []any{"Owner: " + o.Owner, money(o.Total)})
	}

	return rows
}
