package ledger

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// attestDigestTag domain-separates the digest signed by callers from any
// other ed25519 use of the same key.
const attestDigestTag = "x402-attest-v1"

// AttestDigest computes the canonical digest a caller must sign to authorize
// writing a record with these fields. The digest binds every caller-supplied
// field; attested_at and address_proof are store-assigned and excluded.
func AttestDigest(claimID interfaces.ClaimID, proofHash interfaces.ProofHash, publicInputs interfaces.PublicInputs, refundTxSig interfaces.RefundTxSig) [32]byte {
	h := sha256.New()
	h.Write([]byte(attestDigestTag))
	h.Write(claimID.Bytes())
	h.Write(proofHash.Bytes())
	var inputBuf [8]byte
	for _, input := range publicInputs {
		binary.BigEndian.PutUint64(inputBuf[:], input)
		h.Write(inputBuf[:])
	}
	h.Write(refundTxSig.Bytes())

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// Authorizer decides whether a caller may allocate an attestation slot.
type Authorizer interface {
	// Authorize verifies that signature is a valid signature by attester
	// over digest and that attester is permitted to write.
	// Returns interfaces.ErrUnauthorized on any failure.
	Authorize(attester interfaces.AttesterPubkey, digest [32]byte, signature interfaces.CallerSignature) error
}

// AllowlistAuthorizer authorizes ed25519 signers against a fixed allowlist.
// An empty allowlist means open attestation: any key that produces a valid
// signature may write.
type AllowlistAuthorizer struct {
	allowed map[interfaces.AttesterPubkey]struct{}
}

// NewAllowlistAuthorizer creates an authorizer from a set of permitted
// attester keys. Pass no keys for open attestation.
func NewAllowlistAuthorizer(keys ...interfaces.AttesterPubkey) *AllowlistAuthorizer {
	allowed := make(map[interfaces.AttesterPubkey]struct{}, len(keys))
	for _, key := range keys {
		allowed[key] = struct{}{}
	}
	return &AllowlistAuthorizer{allowed: allowed}
}

// Authorize implements Authorizer.
func (a *AllowlistAuthorizer) Authorize(attester interfaces.AttesterPubkey, digest [32]byte, signature interfaces.CallerSignature) error {
	if !ed25519.Verify(attester.PublicKey(), digest[:], signature.Bytes()) {
		return fmt.Errorf("%w: signature verification failed", interfaces.ErrUnauthorized)
	}

	if len(a.allowed) == 0 {
		return nil
	}
	if _, ok := a.allowed[attester]; !ok {
		return fmt.Errorf("%w: attester %s not in allowlist", interfaces.ErrUnauthorized, attester)
	}
	return nil
}
