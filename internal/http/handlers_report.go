package http

import (
	"context"
	"net/http"
	"time"

	"github.com/nisrj10/yieldly/internal/derive"
	applog "github.com/nisrj10/yieldly/internal/log"
)

// cachedReport memoizes the full derived report per calendar day.
func (s *Server) cachedReport(ctx context.Context, asOf time.Time) (derive.Report, error) {
	key := asOf.Format(time.DateOnly)
	if report, found := s.reportCache.Get(key); found {
		s.metrics.cacheHitsTotal.Add(1)
		applog.FromContext(ctx).DebugContext(ctx, "Report cache hit", "as_of", key)
		return report, nil
	}
	s.metrics.cacheMissesTotal.Add(1)

	report, err := s.reports.BuildReport(ctx, asOf)
	if err != nil {
		return derive.Report{}, err
	}
	s.reportCache.Set(key, report)
	return report, nil
}

func (s *Server) handleDashboardReport(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}

	report, err := s.cachedReport(r.Context(), asOf)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard report failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpDerive)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleSplitReport returns each line item with its derived per-member
// amounts plus the budget totals.
func (s *Server) handleSplitReport(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}

	report, err := s.cachedReport(r.Context(), asOf)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		AsOf   string                 `json:"as_of"`
		Budget derive.BudgetSummary   `json:"budget"`
		Items  []derive.LineItemSplit `json:"items"`
	}{report.AsOf.Format(time.DateOnly), report.Budget, report.Items})
}

func (s *Server) handleNetWorthReport(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}

	report, err := s.cachedReport(r.Context(), asOf)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.NetWorth)
}

func (s *Server) handleSpendingReport(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}

	report, err := s.cachedReport(r.Context(), asOf)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		AsOf      string           `json:"as_of"`
		Breakdown derive.Breakdown `json:"breakdown"`
		CashFlow  derive.CashFlow  `json:"cash_flow"`
	}{report.AsOf.Format(time.DateOnly), report.Breakdown, report.CashFlow})
}

// handleBudgetReport derives a report for one specific budget rather
// than the one resolved from the date; not cached since it bypasses
// period resolution.
func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	asOf, err := parseAsOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}

	report, err := s.reports.BuildReportForBudget(r.Context(), id, asOf)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
