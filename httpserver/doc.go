// Package httpserver exposes the attestation ledger over HTTP.
//
// The write endpoint requires a valid ed25519 caller signature; the query
// endpoint requires nothing, so anyone can audit a record.
// Operational endpoints (livez, readyz, drain, undrain,
// optional pprof) follow the usual load-balancer contract; metrics are
// served on a separate listener.
package httpserver
