// Package opsserver is the signer's operational sidecar: a net/http + chi
// server exposing /healthz, /readyz, /drain, and /undrain, kept strictly
// outside the raw-byte core in httpserver. Prometheus exposition lives on
// its own address in the metrics package, separate from this sidecar and
// from the main signing API server.
package opsserver
