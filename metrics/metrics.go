// Package metrics exposes Prometheus metrics for the ledger on a dedicated
// listener, separate from the public API.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// MetricsServer serves the /metrics endpoint.
type MetricsServer struct {
	name string
	srv  *http.Server
}

// New creates a metrics server listening on listenAddr. The name is exported
// as a constant service label.
func New(name, listenAddr string) (*MetricsServer, error) {
	if listenAddr == "" {
		return nil, fmt.Errorf("metrics listen address is empty")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return &MetricsServer{
		name: name,
		srv: &http.Server{
			Addr:         listenAddr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving metrics until Shutdown.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

var (
	attestOKCounter   = metrics.NewCounter(`ledger_attest_total{result="ok"}`)
	queryHitCounter   = metrics.NewCounter(`ledger_query_total{result="hit"}`)
	queryMissCounter  = metrics.NewCounter(`ledger_query_total{result="miss"}`)
	attestDurationSum = metrics.NewSummary(`ledger_attest_duration_seconds`)
)

// IncAttestOK counts a successful write.
func IncAttestOK() {
	attestOKCounter.Inc()
}

// IncAttestFailure counts a rejected write by reason
// (already_exists, unauthorized, malformed, internal).
func IncAttestFailure(reason string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`ledger_attest_failures_total{reason=%q}`, reason)).Inc()
}

// IncQueryHit counts a query that found a record.
func IncQueryHit() {
	queryHitCounter.Inc()
}

// IncQueryMiss counts a query that found nothing.
func IncQueryMiss() {
	queryMissCounter.Inc()
}

// ObserveAttestDuration records the wall time of a write.
func ObserveAttestDuration(d time.Duration) {
	attestDurationSum.Update(d.Seconds())
}
