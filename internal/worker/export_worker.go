package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nisrj10/yieldly/internal/amqp"
	"github.com/nisrj10/yieldly/internal/services"
	"github.com/nisrj10/yieldly/internal/sheets"
)

// ExportWorker re-derives the household report whenever a change event
// arrives and pushes it to the configured exporter. Events are coalesced:
// a burst of changes inside the debounce window produces one export.
type ExportWorker struct {
	reports  *services.ReportService
	exporter sheets.ReportExporter
	debounce time.Duration

	pending int32
}

func NewExportWorker(reports *services.ReportService, exporter sheets.ReportExporter, debounce time.Duration) *ExportWorker {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &ExportWorker{
		reports:  reports,
		exporter: exporter,
		debounce: debounce,
	}
}

// HandleEvent marks the dashboard dirty. The actual export happens on
// the worker's run loop, so the AMQP delivery is acknowledged quickly.
func (w *ExportWorker) HandleEvent(msg *amqp.EventMessage) error {
	switch msg.Kind {
	case amqp.EventBudgetChanged, amqp.EventPortfolioUpdated, amqp.EventGoalUpdated:
		atomic.StoreInt32(&w.pending, 1)
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", msg.Kind)
	}
}

// Run exports pending changes until the context is cancelled. One final
// export is attempted on shutdown if changes are still pending.
func (w *ExportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if atomic.LoadInt32(&w.pending) == 1 {
				w.export(context.WithoutCancel(ctx))
			}
			return ctx.Err()
		case <-ticker.C:
			if atomic.CompareAndSwapInt32(&w.pending, 1, 0) {
				w.export(ctx)
			}
		}
	}
}

// Sweep marks the dashboard dirty on a fixed interval, so an export
// happens even when a change event was lost.
func (w *ExportWorker) Sweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			atomic.StoreInt32(&w.pending, 1)
		}
	}
}

// ExportNow derives and exports the report immediately.
func (w *ExportWorker) ExportNow(ctx context.Context) (string, error) {
	report, err := w.reports.BuildReport(ctx, time.Now())
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}
	ref, err := w.exporter.ExportReport(ctx, report)
	if err != nil {
		return "", fmt.Errorf("export report: %w", err)
	}
	return ref, nil
}

func (w *ExportWorker) export(ctx context.Context) {
	ref, err := w.ExportNow(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Report export failed", "error", err)
		// Leave the dirty flag set so the next tick retries.
		atomic.StoreInt32(&w.pending, 1)
		return
	}
	slog.InfoContext(ctx, "Report exported", "ref", ref)
}
