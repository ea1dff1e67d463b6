package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	appamqp "github.com/nisrj10/yieldly/internal/amqp"
	"github.com/nisrj10/yieldly/internal/assistant"
	"github.com/nisrj10/yieldly/internal/config"
	"github.com/nisrj10/yieldly/internal/derive"
	apphttp "github.com/nisrj10/yieldly/internal/http"
	applog "github.com/nisrj10/yieldly/internal/log"
	"github.com/nisrj10/yieldly/internal/services"
	"github.com/nisrj10/yieldly/internal/storage"
)

func main() {
	// Load .env for local development; absent in production.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Eventing is optional; without a broker the API runs standalone
	// and the export worker simply never hears about changes.
	var publisher services.EventPublisher
	var amqpClient *appamqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP eventing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP eventing disabled - no AMQP_URL provided")
	}

	engine := derive.New(derive.Options{
		EssentialGroups:   cfg.EssentialGroups,
		EssentialFallback: cfg.EssentialFallbackMonthly,
		DependentOwner:    cfg.DependentOwner,
	})

	budgets := services.NewBudgetService(repo, publisher)
	portfolios := services.NewPortfolioService(repo, publisher)
	goals := services.NewGoalService(repo, publisher)
	transactions := services.NewTransactionService(repo)
	reports := services.NewReportService(repo, engine)
	tools := assistant.NewRegistry(reports, budgets, portfolios, goals, transactions)

	srv := apphttp.NewServer(":"+cfg.Port, repo, budgets, portfolios, goals, transactions, reports, tools, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting yieldly server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
