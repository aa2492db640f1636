package api

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/x402labs/attestation-ledger/interfaces"
	"github.com/x402labs/attestation-ledger/ledger"
)

// AttestRequest is the JSON body of POST /api/attest. All byte fields are
// 0x-prefixed hex of their exact fixed width.
type AttestRequest struct {
	ClaimID      hexutil.Bytes `json:"claim_id"`      // 32 bytes
	ProofHash    hexutil.Bytes `json:"proof_hash"`    // 32 bytes
	PublicInputs [4]uint64     `json:"public_inputs"` // [fraud_detected, http_status, body_length, payout_amount]
	RefundTxSig  hexutil.Bytes `json:"refund_tx_sig"` // 64 bytes
	Attester     hexutil.Bytes `json:"attester"`      // 32-byte ed25519 public key
	Signature    hexutil.Bytes `json:"signature"`     // 64-byte ed25519 signature over the attest digest
}

// ToLedgerRequest validates field widths and converts to the ledger's typed
// request. Width violations map to interfaces.ErrMalformedInput so they are
// rejected before any storage interaction.
func (r *AttestRequest) ToLedgerRequest() (ledger.AttestRequest, error) {
	var req ledger.AttestRequest
	var err error

	if req.ClaimID, err = interfaces.NewClaimIDFromBytes(r.ClaimID); err != nil {
		return req, fmt.Errorf("%w: claim_id: %v", interfaces.ErrMalformedInput, err)
	}
	if req.ProofHash, err = interfaces.NewProofHashFromBytes(r.ProofHash); err != nil {
		return req, fmt.Errorf("%w: proof_hash: %v", interfaces.ErrMalformedInput, err)
	}
	req.PublicInputs = interfaces.PublicInputs(r.PublicInputs)
	if req.RefundTxSig, err = interfaces.NewRefundTxSigFromBytes(r.RefundTxSig); err != nil {
		return req, fmt.Errorf("%w: refund_tx_sig: %v", interfaces.ErrMalformedInput, err)
	}
	if req.Attester, err = interfaces.NewAttesterPubkeyFromBytes(r.Attester); err != nil {
		return req, fmt.Errorf("%w: attester: %v", interfaces.ErrMalformedInput, err)
	}
	if req.Signature, err = interfaces.NewCallerSignatureFromBytes(r.Signature); err != nil {
		return req, fmt.Errorf("%w: signature: %v", interfaces.ErrMalformedInput, err)
	}

	return req, nil
}

// AttestationResponse is the JSON form of a stored record, returned by both
// the write and the query endpoints. SlotAddress is included so callers can
// cross-check the derivation against address_proof.
type AttestationResponse struct {
	ClaimID      hexutil.Bytes `json:"claim_id"`
	ProofHash    hexutil.Bytes `json:"proof_hash"`
	PublicInputs [4]uint64     `json:"public_inputs"`
	RefundTxSig  hexutil.Bytes `json:"refund_tx_sig"`
	AttestedAt   int64         `json:"attested_at"`
	Attester     hexutil.Bytes `json:"attester"`
	AddressProof uint8         `json:"address_proof"`
	SlotAddress  hexutil.Bytes `json:"slot_address"`
}

// NewAttestationResponse converts a stored record to its wire form.
func NewAttestationResponse(record *ledger.AttestationRecord) AttestationResponse {
	addr := record.SlotAddress()
	return AttestationResponse{
		ClaimID:      record.ClaimID.Bytes(),
		ProofHash:    record.ProofHash.Bytes(),
		PublicInputs: record.PublicInputs,
		RefundTxSig:  record.RefundTxSig.Bytes(),
		AttestedAt:   record.AttestedAt,
		Attester:     record.Attester.Bytes(),
		AddressProof: record.AddressProof,
		SlotAddress:  addr.Bytes(),
	}
}

// ErrorResponse is the JSON body of every non-200 API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
