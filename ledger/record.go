package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// RecordSize is the exact encoded size of an attestation record:
// 32 (claim_id) + 32 (proof_hash) + 4*8 (public_inputs) + 64 (refund_tx_sig)
// + 8 (attested_at) + 32 (attester) + 1 (address_proof).
const RecordSize = 201

// AttestationRecord is the permanent, publicly readable record certifying
// that a claim was resolved with a specific payout, backed by a proof hash.
// Records are immutable after creation and never deleted.
type AttestationRecord struct {
	// ClaimID is the unique key under which this record was written.
	ClaimID interfaces.ClaimID

	// ProofHash is the content hash of the full off-chain proof.
	ProofHash interfaces.ProofHash

	// PublicInputs are [fraud_detected, http_status, body_length, payout_amount].
	PublicInputs interfaces.PublicInputs

	// RefundTxSig references the on-chain payout transaction.
	RefundTxSig interfaces.RefundTxSig

	// AttestedAt is the unix timestamp assigned by the store at write time,
	// never supplied by the caller.
	AttestedAt int64

	// Attester is the public key that authorized the write.
	Attester interfaces.AttesterPubkey

	// AddressProof is the derivation parameter that, combined with ClaimID,
	// reproduces this record's slot address. Fixed at creation.
	AddressProof uint8
}

// SlotAddress recomputes the record's storage address from its own fields.
func (r *AttestationRecord) SlotAddress() interfaces.SlotAddress {
	return deriveWithProof(r.ClaimID, r.AddressProof)
}

// MarshalBinary encodes the record into its fixed 201-byte layout.
// All integers are big-endian; byte-fixed fields keep their exact width.
func (r *AttestationRecord) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, RecordSize)
	buf = append(buf, r.ClaimID.Bytes()...)
	buf = append(buf, r.ProofHash.Bytes()...)
	for _, input := range r.PublicInputs {
		buf = binary.BigEndian.AppendUint64(buf, input)
	}
	buf = append(buf, r.RefundTxSig.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.AttestedAt))
	buf = append(buf, r.Attester.Bytes()...)
	buf = append(buf, r.AddressProof)
	return buf, nil
}

// UnmarshalBinary decodes a record from its fixed layout. Any payload whose
// length differs from RecordSize is rejected.
func (r *AttestationRecord) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSize {
		return fmt.Errorf("%w: record payload must be %d bytes, got %d",
			interfaces.ErrMalformedInput, RecordSize, len(data))
	}

	offset := 0
	copy(r.ClaimID[:], data[offset:offset+32])
	offset += 32
	copy(r.ProofHash[:], data[offset:offset+32])
	offset += 32
	for i := range r.PublicInputs {
		r.PublicInputs[i] = binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
	}
	copy(r.RefundTxSig[:], data[offset:offset+64])
	offset += 64
	r.AttestedAt = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	copy(r.Attester[:], data[offset:offset+32])
	offset += 32
	r.AddressProof = data[offset]
	return nil
}

// Event builds the write notification corresponding to this record.
func (r *AttestationRecord) Event() interfaces.AttestationEvent {
	return interfaces.AttestationEvent{
		ClaimID:      r.ClaimID,
		ProofHash:    r.ProofHash,
		PayoutAmount: r.PublicInputs.PayoutAmount(),
		AttestedAt:   r.AttestedAt,
	}
}
