package events

import (
	"context"
	"log/slog"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// LogSink publishes notifications to the structured log. It is always
// configured so operators can reconstruct writes from logs alone.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink writing to the given logger.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

// ProofAttested implements interfaces.EventSink.
func (s *LogSink) ProofAttested(ctx context.Context, event interfaces.AttestationEvent) error {
	s.log.Info("Attestation event",
		slog.String("type", EventType),
		slog.String("claim_id", event.ClaimID.String()),
		slog.String("proof_hash", event.ProofHash.String()),
		slog.Uint64("payout_amount", event.PayoutAmount),
		slog.Int64("attested_at", event.AttestedAt))
	return nil
}

// Name returns identifier for logging.
func (s *LogSink) Name() string {
	return "log"
}
