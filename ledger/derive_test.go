package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/interfaces"
)

func TestDeriveSlotAddress_Deterministic(t *testing.T) {
	claimID, err := interfaces.NewClaimIDFromHex("0101010101010101010101010101010101010101010101010101010101010101")
	require.NoError(t, err)

	addr1, proof1, err := DeriveSlotAddress(claimID)
	require.NoError(t, err)
	addr2, proof2, err := DeriveSlotAddress(claimID)
	require.NoError(t, err)

	assert.True(t, addr1.Equal(addr2), "same claim id must derive the same address")
	assert.Equal(t, proof1, proof2)
}

func TestDeriveSlotAddress_DistinctClaims(t *testing.T) {
	seen := make(map[interfaces.SlotAddress]bool)
	for i := 0; i < 256; i++ {
		var claimID interfaces.ClaimID
		claimID[0] = byte(i)
		claimID[31] = byte(i * 7)

		addr, _, err := DeriveSlotAddress(claimID)
		require.NoError(t, err)
		assert.False(t, seen[addr], "address collision for claim %d", i)
		seen[addr] = true
	}
}

func TestDeriveSlotAddress_AvoidsReservedRange(t *testing.T) {
	for i := 0; i < 512; i++ {
		var claimID interfaces.ClaimID
		claimID[0] = byte(i)
		claimID[1] = byte(i >> 8)

		addr, _, err := DeriveSlotAddress(claimID)
		require.NoError(t, err)
		assert.NotEqual(t, reservedPrefix, addr[0], "derived address must not be in the reserved range")
	}
}

func TestVerifySlotAddress(t *testing.T) {
	var claimID interfaces.ClaimID
	claimID[5] = 0x42

	addr, proof, err := DeriveSlotAddress(claimID)
	require.NoError(t, err)

	assert.True(t, VerifySlotAddress(claimID, proof, addr))

	// A different proof byte must not verify.
	assert.False(t, VerifySlotAddress(claimID, proof-1, addr))

	// A different claim must not verify against this address.
	var otherClaim interfaces.ClaimID
	otherClaim[5] = 0x43
	assert.False(t, VerifySlotAddress(otherClaim, proof, addr))
}
