package api

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/interfaces"
)

func testWireRequest() *AttestRequest {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 7
	privKey := ed25519.NewKeyFromSeed(seed)

	return &AttestRequest{
		ClaimID:      bytes.Repeat([]byte{0x01}, 32),
		ProofHash:    bytes.Repeat([]byte{0xAA}, 32),
		PublicInputs: [4]uint64{1, 500, 128, 1000000},
		RefundTxSig:  bytes.Repeat([]byte{0xBB}, 64),
		Attester:     hexutil.Bytes(privKey.Public().(ed25519.PublicKey)),
		Signature:    make(hexutil.Bytes, ed25519.SignatureSize),
	}
}

func TestAttestRequestToLedgerRequest(t *testing.T) {
	req := testWireRequest()

	typed, err := req.ToLedgerRequest()
	require.NoError(t, err)

	assert.Equal(t, []byte(req.ClaimID), typed.ClaimID.Bytes())
	assert.Equal(t, []byte(req.ProofHash), typed.ProofHash.Bytes())
	assert.Equal(t, req.PublicInputs, [4]uint64(typed.PublicInputs))
	assert.Equal(t, []byte(req.RefundTxSig), typed.RefundTxSig.Bytes())

	// An ed25519 public key converts losslessly into the attester field.
	assert.Equal(t, ed25519.PublicKey(req.Attester), typed.Attester.PublicKey())
}

func TestAttestRequestWidthValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AttestRequest)
	}{
		{"short claim id", func(r *AttestRequest) { r.ClaimID = r.ClaimID[:31] }},
		{"short proof hash", func(r *AttestRequest) { r.ProofHash = r.ProofHash[:31] }},
		{"short refund tx sig", func(r *AttestRequest) { r.RefundTxSig = r.RefundTxSig[:63] }},
		{"short attester", func(r *AttestRequest) { r.Attester = r.Attester[:31] }},
		{"short signature", func(r *AttestRequest) { r.Signature = r.Signature[:63] }},
		{"empty attester", func(r *AttestRequest) { r.Attester = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testWireRequest()
			tc.mutate(req)
			_, err := req.ToLedgerRequest()
			assert.ErrorIs(t, err, interfaces.ErrMalformedInput)
		})
	}
}
