package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// metrics holds plain process-local counters, served as text on
// /metrics.
type metrics struct {
	requestsTotal     atomic.Int64
	clientErrorsTotal atomic.Int64
	serverErrorsTotal atomic.Int64
	rateLimitedTotal  atomic.Int64
	cacheHitsTotal    atomic.Int64
	cacheMissesTotal  atomic.Int64
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, c := range []struct {
		name  string
		value int64
	}{
		{"yieldly_http_requests_total", s.metrics.requestsTotal.Load()},
		{"yieldly_http_client_errors_total", s.metrics.clientErrorsTotal.Load()},
		{"yieldly_http_server_errors_total", s.metrics.serverErrorsTotal.Load()},
		{"yieldly_http_rate_limited_total", s.metrics.rateLimitedTotal.Load()},
		{"yieldly_report_cache_hits_total", s.metrics.cacheHitsTotal.Load()},
		{"yieldly_report_cache_misses_total", s.metrics.cacheMissesTotal.Load()},
	} {
		fmt.Fprintf(w, "%s %d\n", c.name, c.value)
	}
}
