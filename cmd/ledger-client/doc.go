// Package main (cmd/ledger-client) implements a command-line client for the
// attestation ledger.
//
// The attest command hashes a proof file with BLAKE2b-256, signs the
// canonical attest digest with an ed25519 seed, and submits the record. The
// query command fetches a record by claim ID without any credentials. The
// derive command prints the slot address for a claim ID, demonstrating that
// record locations are recomputable offline from public information.
package main
