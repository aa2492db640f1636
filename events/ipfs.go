package events

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/x402labs/attestation-ledger/interfaces"
)

// IPFSSink archives notification payloads to IPFS. Indexers can pin the CIDs
// to keep a decentralized trail of writes; the CID is only logged here, never
// stored, since the ledger record remains the source of truth.
type IPFSSink struct {
	shell *shell.Shell
	log   *slog.Logger
}

// NewIPFSSink creates a sink connected to the IPFS API at apiAddr
// (host:port).
func NewIPFSSink(apiAddr string, log *slog.Logger) *IPFSSink {
	return &IPFSSink{
		shell: shell.NewShell(apiAddr),
		log:   log,
	}
}

// ProofAttested implements interfaces.EventSink.
func (s *IPFSSink) ProofAttested(ctx context.Context, event interfaces.AttestationEvent) error {
	if !s.shell.IsUp() {
		return fmt.Errorf("ipfs node unavailable")
	}

	body, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	cid, err := s.shell.Add(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to add attestation event to IPFS: %w", err)
	}

	s.log.Info("Archived attestation event to IPFS",
		slog.String("cid", cid),
		slog.String("claim_id", event.ClaimID.String()))

	return nil
}

// Name returns identifier for logging.
func (s *IPFSSink) Name() string {
	return "ipfs"
}
