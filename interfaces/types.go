// Package interfaces defines the core types and contracts of the attestation
// ledger. It provides the boundary between the ledger logic, the storage
// substrates, and the event sinks without implementation details.
package interfaces

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ClaimID is the 32-byte identifier of a fraud claim. Exactly one attestation
// may ever exist per claim ID.
type ClaimID [32]byte

// NewClaimIDFromBytes creates a claim ID from a 32-byte slice.
func NewClaimIDFromBytes(source []byte) (ClaimID, error) {
	if len(source) != 32 {
		return ClaimID{}, errors.New("invalid ClaimID conversion from bytes: incorrect length")
	}

	var id ClaimID
	copy(id[:], source)
	return id, nil
}

// NewClaimIDFromHex creates a claim ID from a 64-character hex string,
// with or without a 0x prefix.
func NewClaimIDFromHex(source string) (ClaimID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ClaimID{}, errors.New("invalid claim ID length: hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return ClaimID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	var id ClaimID
	copy(id[:], raw)
	return id, nil
}

// String returns hex representation.
func (id ClaimID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 32 bytes.
func (id ClaimID) Bytes() []byte {
	return id[:]
}

// Equal compares two claim IDs.
func (id ClaimID) Equal(other ClaimID) bool {
	return bytes.Equal(id[:], other[:])
}

// ProofHash is the 32-byte content hash of the full off-chain proof.
// The ledger stores it verbatim; it never inspects or recomputes it.
type ProofHash [32]byte

// NewProofHashFromBytes creates a proof hash from a 32-byte slice.
func NewProofHashFromBytes(source []byte) (ProofHash, error) {
	if len(source) != 32 {
		return ProofHash{}, errors.New("invalid ProofHash conversion from bytes: incorrect length")
	}

	var h ProofHash
	copy(h[:], source)
	return h, nil
}

// String returns hex representation.
func (h ProofHash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the raw 32 bytes.
func (h ProofHash) Bytes() []byte {
	return h[:]
}

// RefundTxSig is the 64-byte signature of the on-chain refund transaction,
// stored as an opaque reference to the payout.
type RefundTxSig [64]byte

// NewRefundTxSigFromBytes creates a refund signature reference from a
// 64-byte slice.
func NewRefundTxSigFromBytes(source []byte) (RefundTxSig, error) {
	if len(source) != 64 {
		return RefundTxSig{}, errors.New("invalid RefundTxSig conversion from bytes: incorrect length")
	}

	var sig RefundTxSig
	copy(sig[:], source)
	return sig, nil
}

// String returns hex representation.
func (sig RefundTxSig) String() string {
	return hex.EncodeToString(sig[:])
}

// Bytes returns the raw 64 bytes.
func (sig RefundTxSig) Bytes() []byte {
	return sig[:]
}

// Indices into PublicInputs.
const (
	InputFraudDetected = iota
	InputHTTPStatus
	InputBodyLength
	InputPayoutAmount
)

// PublicInputs are the four public inputs of the verified proof:
// [fraud_detected, http_status, body_length, payout_amount].
// The ledger records them uncritically; their policy meaning belongs to the
// calling collaborator.
type PublicInputs [4]uint64

// FraudDetected reports the fraud flag input.
func (p PublicInputs) FraudDetected() uint64 { return p[InputFraudDetected] }

// HTTPStatus reports the HTTP status input.
func (p PublicInputs) HTTPStatus() uint64 { return p[InputHTTPStatus] }

// BodyLength reports the response body length input.
func (p PublicInputs) BodyLength() uint64 { return p[InputBodyLength] }

// PayoutAmount reports the payout amount input in micro-USDC.
func (p PublicInputs) PayoutAmount() uint64 { return p[InputPayoutAmount] }

// AttesterPubkey is the ed25519 public key identifying whoever authorized a
// write. It records provenance only; it grants no mutation rights.
type AttesterPubkey [32]byte

// NewAttesterPubkeyFromBytes creates an attester key from a 32-byte slice.
func NewAttesterPubkeyFromBytes(source []byte) (AttesterPubkey, error) {
	if len(source) != ed25519.PublicKeySize {
		return AttesterPubkey{}, errors.New("invalid AttesterPubkey conversion from bytes: incorrect length")
	}

	var pk AttesterPubkey
	copy(pk[:], source)
	return pk, nil
}

// NewAttesterPubkeyFromHex creates an attester key from a 64-character hex
// string, with or without a 0x prefix.
func NewAttesterPubkeyFromHex(source string) (AttesterPubkey, error) {
	clean := strings.TrimPrefix(source, "0x")
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return AttesterPubkey{}, fmt.Errorf("invalid hex format: %w", err)
	}
	return NewAttesterPubkeyFromBytes(raw)
}

// String returns hex representation.
func (pk AttesterPubkey) String() string {
	return hex.EncodeToString(pk[:])
}

// Bytes returns the raw 32 bytes.
func (pk AttesterPubkey) Bytes() []byte {
	return pk[:]
}

// PublicKey returns the key as a crypto/ed25519 public key.
func (pk AttesterPubkey) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(pk[:])
}

// Equal compares two attester keys.
func (pk AttesterPubkey) Equal(other AttesterPubkey) bool {
	return bytes.Equal(pk[:], other[:])
}

// CallerSignature is an ed25519 signature authorizing a write.
type CallerSignature [64]byte

// NewCallerSignatureFromBytes creates a caller signature from a 64-byte slice.
func NewCallerSignatureFromBytes(source []byte) (CallerSignature, error) {
	if len(source) != ed25519.SignatureSize {
		return CallerSignature{}, errors.New("invalid CallerSignature conversion from bytes: incorrect length")
	}

	var sig CallerSignature
	copy(sig[:], source)
	return sig, nil
}

// Bytes returns the raw 64 bytes.
func (sig CallerSignature) Bytes() []byte {
	return sig[:]
}

// SlotAddress is the 32-byte storage address of an attestation slot, derived
// deterministically from a claim ID. See the ledger package for derivation.
type SlotAddress [32]byte

// NewSlotAddressFromBytes creates a slot address from a 32-byte slice.
func NewSlotAddressFromBytes(source []byte) (SlotAddress, error) {
	if len(source) != 32 {
		return SlotAddress{}, errors.New("invalid SlotAddress conversion from bytes: incorrect length")
	}

	var addr SlotAddress
	copy(addr[:], source)
	return addr, nil
}

// String returns hex representation.
func (addr SlotAddress) String() string {
	return hex.EncodeToString(addr[:])
}

// Bytes returns the raw 32 bytes.
func (addr SlotAddress) Bytes() []byte {
	return addr[:]
}

// Equal compares two slot addresses.
func (addr SlotAddress) Equal(other SlotAddress) bool {
	return bytes.Equal(addr[:], other[:])
}
