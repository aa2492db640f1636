// Package common holds process-wide constants and logger setup shared by all
// binaries in this repository.
package common

// PackageName identifies this service in logs and metrics.
const PackageName = "attestation-ledger"

// Version is set at build time via -ldflags.
var Version = "dev"
