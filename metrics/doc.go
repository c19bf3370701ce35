// Package metrics exposes the signer's Prometheus counters and gauges, and
// a small HTTP server to serve them on its own address, independent of the
// signing API and the ops sidecar.
package metrics
