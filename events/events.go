// Package events implements write-notification sinks for the attestation
// ledger. Sinks are fire-and-forget: they let off-chain indexers reconstruct
// records without reading storage, but the stored record stays authoritative
// and a sink failure never fails a write.
package events

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/x402labs/attestation-ledger/interfaces"
)

// EventType tags every published notification payload.
const EventType = "x402_proof_attestation"

// wirePayload is the JSON form shared by all sinks.
type wirePayload struct {
	Type         string        `json:"type"`
	ClaimID      hexutil.Bytes `json:"claim_id"`
	ProofHash    hexutil.Bytes `json:"proof_hash"`
	PayoutAmount uint64        `json:"payout_amount"`
	AttestedAt   int64         `json:"attested_at"`
}

// EncodeEvent serializes a notification to its canonical JSON wire form.
func EncodeEvent(event interfaces.AttestationEvent) ([]byte, error) {
	return json.Marshal(wirePayload{
		Type:         EventType,
		ClaimID:      event.ClaimID.Bytes(),
		ProofHash:    event.ProofHash.Bytes(),
		PayoutAmount: event.PayoutAmount,
		AttestedAt:   event.AttestedAt,
	})
}
