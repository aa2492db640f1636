package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/interfaces"
)

func testEvent() interfaces.AttestationEvent {
	event := interfaces.AttestationEvent{
		PayoutAmount: 1000000,
		AttestedAt:   1735689600,
	}
	for i := range event.ClaimID {
		event.ClaimID[i] = 0x01
	}
	for i := range event.ProofHash {
		event.ProofHash[i] = 0xAA
	}
	return event
}

func TestEncodeEvent(t *testing.T) {
	encoded, err := EncodeEvent(testEvent())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, EventType, decoded["type"])
	assert.Equal(t, "0x0101010101010101010101010101010101010101010101010101010101010101", decoded["claim_id"])
	assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", decoded["proof_hash"])
	assert.Equal(t, float64(1000000), decoded["payout_amount"])
	assert.Equal(t, float64(1735689600), decoded["attested_at"])
}

type recordingSink struct {
	name   string
	events []interfaces.AttestationEvent
	err    error
}

func (s *recordingSink) ProofAttested(ctx context.Context, event interfaces.AttestationEvent) error {
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) Name() string { return s.name }

func TestMultiSinkFansOutPastFailures(t *testing.T) {
	failing := &recordingSink{name: "failing", err: assert.AnError}
	healthy := &recordingSink{name: "healthy"}

	multi := NewMultiSink(failing, healthy)
	err := multi.ProofAttested(context.Background(), testEvent())

	// The failure is reported, but every sink still received the event.
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, failing.events, 1)
	assert.Len(t, healthy.events, 1)

	assert.Equal(t, "multi(failing,healthy)", multi.Name())
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, sink.ProofAttested(context.Background(), testEvent()))
	assert.Equal(t, "log", sink.Name())
}
