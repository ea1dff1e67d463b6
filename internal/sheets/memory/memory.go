package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nisrj10/yieldly/internal/derive"
	ports "github.com/nisrj10/yieldly/internal/sheets"
)

// Store is an in-memory report exporter used in development and tests.
type Store struct {
	mu      sync.Mutex
	exports []derive.Report
}

var _ ports.ReportExporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// ExportReport stores the report and returns a synthetic reference.
func (s *Store) ExportReport(_ context.Context, r derive.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append(s.exports, r)
	return fmt.Sprintf("mem:%d", len(s.exports)), nil
}

// Latest returns the most recently exported report, if any.
func (s *Store) Latest() (derive.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.exports) == 0 {
		return derive.Report{}, false
	}
	return s.exports[len(s.exports)-1], true
}

// Count returns the number of exports recorded.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exports)
}
