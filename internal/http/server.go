// Package http exposes the household finance services as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/nisrj10/yieldly/internal/assistant"
	"github.com/nisrj10/yieldly/internal/derive"
	applog "github.com/nisrj10/yieldly/internal/log"
	"github.com/nisrj10/yieldly/internal/services"
	"github.com/nisrj10/yieldly/internal/storage"
)

type Server struct {
	http.Server

	budgets      *services.BudgetService
	portfolios   *services.PortfolioService
	goals        *services.GoalService
	transactions *services.TransactionService
	reports      *services.ReportService
	tools        *assistant.Registry
	repo         *storage.SQLiteRepository
	logger       *applog.Logger

	rateLimiter *rateLimiter
	metrics     metrics

	// Derived reports are expensive enough to memoize between
	// mutations; any write purges the whole cache.
	reportCache *lruCache[derive.Report]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer wires the routes and returns a ready-to-run server.
func NewServer(addr string, repo *storage.SQLiteRepository, budgets *services.BudgetService, portfolios *services.PortfolioService, goals *services.GoalService, transactions *services.TransactionService, reports *services.ReportService, tools *assistant.Registry, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	httpLogger := logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      applog.Middleware(httpLogger)(mux),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		budgets:          budgets,
		portfolios:       portfolios,
		goals:            goals,
		transactions:     transactions,
		reports:          reports,
		tools:            tools,
		repo:             repo,
		logger:           httpLogger,
		rateLimiter:      newRateLimiter(),
		reportCache:      newLRUCache[derive.Report](50, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/budgets", s.withSecurityHeaders(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withSecurityHeaders(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets/{id}", s.withSecurityHeaders(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withSecurityHeaders(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withSecurityHeaders(s.handleDeleteBudget))
	mux.HandleFunc("POST /api/budgets/{id}/duplicate", s.withSecurityHeaders(s.handleDuplicateBudget))
	mux.HandleFunc("GET /api/budgets/{id}/changes", s.withSecurityHeaders(s.handleListChanges))
	mux.HandleFunc("GET /api/budgets/{id}/items", s.withSecurityHeaders(s.handleListLineItems))
	mux.HandleFunc("POST /api/budgets/{id}/items", s.withSecurityHeaders(s.handleAddLineItem))
	mux.HandleFunc("PUT /api/items/{id}", s.withSecurityHeaders(s.handleUpdateLineItem))
	mux.HandleFunc("DELETE /api/items/{id}", s.withSecurityHeaders(s.handleDeleteLineItem))

	mux.HandleFunc("GET /api/portfolios", s.withSecurityHeaders(s.handleListPortfolios))
	mux.HandleFunc("POST /api/portfolios", s.withSecurityHeaders(s.handleCreatePortfolio))
	mux.HandleFunc("GET /api/portfolios/{id}", s.withSecurityHeaders(s.handleGetPortfolio))
	mux.HandleFunc("PUT /api/portfolios/{id}", s.withSecurityHeaders(s.handleUpdatePortfolio))
	mux.HandleFunc("DELETE /api/portfolios/{id}", s.withSecurityHeaders(s.handleDeactivatePortfolio))
	mux.HandleFunc("POST /api/portfolios/{id}/value", s.withSecurityHeaders(s.handleUpdatePortfolioValue))
	mux.HandleFunc("GET /api/portfolios/{id}/snapshots", s.withSecurityHeaders(s.handleListSnapshots))

	mux.HandleFunc("GET /api/goals", s.withSecurityHeaders(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withSecurityHeaders(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals/{id}", s.withSecurityHeaders(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withSecurityHeaders(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withSecurityHeaders(s.handleDeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/funds", s.withSecurityHeaders(s.handleAddFunds))

	mux.HandleFunc("GET /api/transactions", s.withSecurityHeaders(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withSecurityHeaders(s.handleRecordTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withSecurityHeaders(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/reports/dashboard", s.withSecurityHeaders(s.handleDashboardReport))
	mux.HandleFunc("GET /api/reports/split", s.withSecurityHeaders(s.handleSplitReport))
	mux.HandleFunc("GET /api/reports/net-worth", s.withSecurityHeaders(s.handleNetWorthReport))
	mux.HandleFunc("GET /api/reports/spending-breakdown", s.withSecurityHeaders(s.handleSpendingReport))
	mux.HandleFunc("GET /api/reports/monthly-spending", s.withSecurityHeaders(s.handleMonthlySpendingReport))
	mux.HandleFunc("GET /api/budgets/{id}/report", s.withSecurityHeaders(s.handleBudgetReport))

	mux.HandleFunc("GET /api/tools", s.withSecurityHeaders(s.handleListTools))
	mux.HandleFunc("POST /api/tools/{name}", s.withSecurityHeaders(s.handleCallTool))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.reportCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("Report cache cleanup", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateReports drops all cached reports; called after every
// mutation since any write can change the derived numbers.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DB().PingContext(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("storage unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
