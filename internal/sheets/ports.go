package sheets

import (
	"context"

	"github.com/nisrj10/yieldly/internal/derive"
)

// ReportExporter is the outbound port for pushing a derived report to an
// external surface the household reads (a spreadsheet, a file, a test
// double).
type ReportExporter interface {
	// ExportReport writes the report and returns an adapter-specific
	// reference to where it landed.
	ExportReport(ctx context.Context, r derive.Report) (ref string, err error)
}
