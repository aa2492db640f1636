package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/interfaces"
)

func testRecord() *AttestationRecord {
	record := &AttestationRecord{
		PublicInputs: interfaces.PublicInputs{1, 500, 128, 1000000},
		AttestedAt:   1735689600,
		AddressProof: 254,
	}
	for i := range record.ClaimID {
		record.ClaimID[i] = 0x01
	}
	for i := range record.ProofHash {
		record.ProofHash[i] = 0xAA
	}
	for i := range record.RefundTxSig {
		record.RefundTxSig[i] = 0xBB
	}
	for i := range record.Attester {
		record.Attester[i] = 0xCC
	}
	return record
}

func TestRecordRoundTrip(t *testing.T) {
	record := testRecord()

	encoded, err := record.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, encoded, RecordSize)

	decoded := new(AttestationRecord)
	require.NoError(t, decoded.UnmarshalBinary(encoded))
	assert.Equal(t, record, decoded)
}

func TestRecordUnmarshalRejectsWrongLength(t *testing.T) {
	decoded := new(AttestationRecord)

	assert.ErrorIs(t, decoded.UnmarshalBinary(make([]byte, RecordSize-1)), interfaces.ErrMalformedInput)
	assert.ErrorIs(t, decoded.UnmarshalBinary(make([]byte, RecordSize+1)), interfaces.ErrMalformedInput)
	assert.ErrorIs(t, decoded.UnmarshalBinary(nil), interfaces.ErrMalformedInput)
}

func TestRecordSlotAddressMatchesDerivation(t *testing.T) {
	record := testRecord()

	addr, proof, err := DeriveSlotAddress(record.ClaimID)
	require.NoError(t, err)

	record.AddressProof = proof
	assert.True(t, record.SlotAddress().Equal(addr))
}

func TestRecordEvent(t *testing.T) {
	record := testRecord()
	event := record.Event()

	assert.Equal(t, record.ClaimID, event.ClaimID)
	assert.Equal(t, record.ProofHash, event.ProofHash)
	assert.Equal(t, uint64(1000000), event.PayoutAmount)
	assert.Equal(t, record.AttestedAt, event.AttestedAt)
}
