package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	appamqp "github.com/nisrj10/yieldly/internal/amqp"
	"github.com/nisrj10/yieldly/internal/config"
	"github.com/nisrj10/yieldly/internal/derive"
	applog "github.com/nisrj10/yieldly/internal/log"
	"github.com/nisrj10/yieldly/internal/services"
	"github.com/nisrj10/yieldly/internal/sheets"
	gsheet "github.com/nisrj10/yieldly/internal/sheets/google"
	mem "github.com/nisrj10/yieldly/internal/sheets/memory"
	"github.com/nisrj10/yieldly/internal/storage"
	"github.com/nisrj10/yieldly/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting yieldly-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	engine := derive.New(derive.Options{
		EssentialGroups:   cfg.EssentialGroups,
		EssentialFallback: cfg.EssentialFallbackMonthly,
		DependentOwner:    cfg.DependentOwner,
	})
	reports := services.NewReportService(repo, engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exporter sheets.ReportExporter
	switch cfg.ExportBackend {
	case "sheets":
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.GoogleCredentialsFile, cfg.GoogleCredentialsJSON)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	default:
		exporter = mem.New()
		logger.Info("In-memory export backend enabled")
	}

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(reports, exporter, 0)

	// The dashboard may be stale from downtime; export once at startup.
	if ref, err := exportWorker.ExportNow(ctx); err != nil {
		logger.Warn("Startup export failed", applog.FieldError, err)
	} else {
		logger.Info("Startup export complete", applog.FieldSheetsRef, ref)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeWithRetry(ctx, exportWorker.HandleEvent)
	})
	g.Go(func() error {
		return exportWorker.Run(ctx)
	})
	g.Go(func() error {
		// Periodic sweep covers events lost while the broker or worker
		// was down.
		return exportWorker.Sweep(ctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
