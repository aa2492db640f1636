package events

import (
	"context"
	"errors"
	"strings"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// MultiSink fans a notification out to several sinks. Every sink receives the
// event even if earlier sinks fail; errors are joined for the caller's log.
type MultiSink struct {
	sinks []interfaces.EventSink
}

// NewMultiSink creates a fan-out sink.
func NewMultiSink(sinks ...interfaces.EventSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// ProofAttested implements interfaces.EventSink.
func (s *MultiSink) ProofAttested(ctx context.Context, event interfaces.AttestationEvent) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.ProofAttested(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Name returns the combined names of all sinks.
func (s *MultiSink) Name() string {
	names := make([]string, 0, len(s.sinks))
	for _, sink := range s.sinks {
		names = append(names, sink.Name())
	}
	return "multi(" + strings.Join(names, ",") + ")"
}
