package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts every dispatched request by endpoint.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signer_requests_total",
		Help: "Total requests dispatched, by endpoint.",
	}, []string{"endpoint"})

	// SignTotal counts successful Sign requests.
	SignTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signer_sign_total",
		Help: "Total successful sign operations.",
	})

	// ImportFailuresTotal counts Import requests that failed the EIP-2335
	// pipeline or the atomic batch-insert check.
	ImportFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signer_import_failures_total",
		Help: "Total import requests that failed to decrypt or insert.",
	})

	// KeystoreSize reports the current number of stored key pairs.
	KeystoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signer_keystore_size",
		Help: "Current number of key pairs held in the in-memory keystore.",
	})
)

// Server serves the Prometheus exposition endpoint on its own listener,
// separate from the signing API and the ops sidecar.
type Server struct {
	srv *http.Server
}

// New builds a metrics server bound to addr. Pass an empty addr to disable
// it; New still returns a usable, never-started Server in that case.
func New(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{srv: &http.Server{Addr: addr, Handler: mux}}
}

// ListenAndServe blocks serving /metrics until the server is shut down.
func (s *Server) ListenAndServe() error {
	if s.srv.Addr == "" {
		return http.ErrServerClosed
	}
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
