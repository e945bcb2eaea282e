// Package metrics exposes Prometheus metrics for the notebox service on a
// dedicated listener, separate from the API server.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Application counters, incremented by the services.
var (
	NotesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notebox_notes_created_total",
		Help: "Number of notes created.",
	})
	NotesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notebox_notes_deleted_total",
		Help: "Number of notes deleted.",
	})
	NotesImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notebox_notes_imported_total",
		Help: "Number of notes ingested via import.",
	})
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notebox_sessions_created_total",
		Help: "Number of access sessions created.",
	})
	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notebox_sessions_expired_total",
		Help: "Number of sessions removed on lookup after their TTL passed.",
	})
	StoreWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notebox_store_write_failures_total",
		Help: "Number of failed document writes.",
	})
)

// MetricsServer serves the Prometheus scrape endpoint.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on addr. The default registry is
// used, so the standard Go and process collectors are included alongside the
// application counters above.
func New(addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{Addr: addr, Handler: mux},
	}, nil
}

// ListenAndServe blocks serving the scrape endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
