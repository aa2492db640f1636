package ledger

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/interfaces"
)

func TestAttestDigestBindsAllFields(t *testing.T) {
	var claimID interfaces.ClaimID
	var proofHash interfaces.ProofHash
	var refundSig interfaces.RefundTxSig
	inputs := interfaces.PublicInputs{1, 500, 128, 1000000}

	base := AttestDigest(claimID, proofHash, inputs, refundSig)

	claimID[0] = 1
	assert.NotEqual(t, base, AttestDigest(claimID, proofHash, inputs, refundSig))
	claimID[0] = 0

	proofHash[0] = 1
	assert.NotEqual(t, base, AttestDigest(claimID, proofHash, inputs, refundSig))
	proofHash[0] = 0

	inputs[3] = 2000000
	assert.NotEqual(t, base, AttestDigest(claimID, proofHash, inputs, refundSig))
	inputs[3] = 1000000

	refundSig[0] = 1
	assert.NotEqual(t, base, AttestDigest(claimID, proofHash, inputs, refundSig))
}

func TestAllowlistAuthorizer(t *testing.T) {
	privKey, attester := testSigner(t, 3)
	digest := AttestDigest(interfaces.ClaimID{}, interfaces.ProofHash{}, interfaces.PublicInputs{}, interfaces.RefundTxSig{})

	var signature interfaces.CallerSignature
	copy(signature[:], ed25519.Sign(privKey, digest[:]))

	t.Run("open authorizer accepts any valid signer", func(t *testing.T) {
		authorizer := NewAllowlistAuthorizer()
		assert.NoError(t, authorizer.Authorize(attester, digest, signature))
	})

	t.Run("invalid signature is rejected", func(t *testing.T) {
		authorizer := NewAllowlistAuthorizer()
		tampered := signature
		tampered[0] ^= 0xFF
		assert.ErrorIs(t, authorizer.Authorize(attester, digest, tampered), interfaces.ErrUnauthorized)
	})

	t.Run("allowlisted signer is accepted", func(t *testing.T) {
		authorizer := NewAllowlistAuthorizer(attester)
		assert.NoError(t, authorizer.Authorize(attester, digest, signature))
	})

	t.Run("signer outside allowlist is rejected", func(t *testing.T) {
		otherKey, otherAttester := testSigner(t, 4)
		authorizer := NewAllowlistAuthorizer(attester)

		var otherSig interfaces.CallerSignature
		copy(otherSig[:], ed25519.Sign(otherKey, digest[:]))
		require.NoError(t, NewAllowlistAuthorizer().Authorize(otherAttester, digest, otherSig))

		assert.ErrorIs(t, authorizer.Authorize(otherAttester, digest, otherSig), interfaces.ErrUnauthorized)
	})
}
