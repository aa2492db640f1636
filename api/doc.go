// Package api defines the JSON wire types of the attestation ledger's HTTP
// interface and their conversion to the ledger's fixed-width domain types.
//
// Two operations exist:
//
//	POST /api/attest                          write a record (authorized)
//	GET  /api/public/attestation/{claim_id}   read a record (public)
//
// Byte fields travel as 0x-prefixed hex at their exact fixed width; any other
// width is rejected with 400 before the ledger is touched.
package api
