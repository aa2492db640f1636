package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// AttestRequest carries the caller-supplied fields of a write. All byte-fixed
// fields are already at their exact width; parsing variable-length encodings
// into these types is the transport layer's job.
type AttestRequest struct {
	ClaimID      interfaces.ClaimID
	ProofHash    interfaces.ProofHash
	PublicInputs interfaces.PublicInputs
	RefundTxSig  interfaces.RefundTxSig

	// Attester is the public key claiming authorship of this write.
	Attester interfaces.AttesterPubkey

	// Signature is the attester's ed25519 signature over AttestDigest of the
	// four record fields above.
	Signature interfaces.CallerSignature
}

// Store is the attestation record store: a deterministically-addressed,
// append-only map of claim IDs to attestation records over a pluggable
// slot substrate.
//
// Each operation is a single atomic allocate-or-fetch against the substrate.
// The store performs no internal retries, holds no cache in front of reads,
// and keeps no shared mutable state outside individual slots.
type Store struct {
	slots      interfaces.SlotStore
	sink       interfaces.EventSink
	authorizer Authorizer
	now        func() time.Time
	log        *slog.Logger
}

// NewStore creates an attestation store over the given substrate.
// The sink may be nil, in which case writes emit no notifications.
func NewStore(slots interfaces.SlotStore, sink interfaces.EventSink, authorizer Authorizer, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		slots:      slots,
		sink:       sink,
		authorizer: authorizer,
		now:        time.Now,
		log:        log,
	}
}

// WithClock overrides the store clock. Tests only.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Attest creates the attestation record for req.ClaimID. The write is
// rejected with interfaces.ErrUnauthorized before any storage interaction if
// the caller's signature does not authorize it, and with
// interfaces.ErrAlreadyExists if the claim already has a record. On success
// exactly one notification is emitted; on failure none, and no partial state
// is produced.
func (s *Store) Attest(ctx context.Context, req AttestRequest) (*AttestationRecord, error) {
	digest := AttestDigest(req.ClaimID, req.ProofHash, req.PublicInputs, req.RefundTxSig)
	if err := s.authorizer.Authorize(req.Attester, digest, req.Signature); err != nil {
		s.log.Debug("Rejected unauthorized attest call",
			slog.String("claim_id", req.ClaimID.String()),
			slog.String("attester", req.Attester.String()))
		return nil, err
	}

	addr, addressProof, err := DeriveSlotAddress(req.ClaimID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrMalformedInput, err)
	}

	record := &AttestationRecord{
		ClaimID:      req.ClaimID,
		ProofHash:    req.ProofHash,
		PublicInputs: req.PublicInputs,
		RefundTxSig:  req.RefundTxSig,
		AttestedAt:   s.now().Unix(),
		Attester:     req.Attester,
		AddressProof: addressProof,
	}

	payload, err := record.MarshalBinary()
	if err != nil {
		return nil, err
	}

	if err := s.slots.PutIfAbsent(ctx, addr, payload); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			s.log.Info("Attestation slot already occupied",
				slog.String("claim_id", req.ClaimID.String()),
				slog.String("slot", addr.String()))
			return nil, interfaces.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to allocate attestation slot: %w", err)
	}

	s.log.Info("Proof attested",
		slog.String("claim_id", req.ClaimID.String()),
		slog.String("slot", addr.String()),
		slog.Uint64("payout_amount", record.PublicInputs.PayoutAmount()),
		slog.Int64("attested_at", record.AttestedAt))

	s.emit(ctx, record)

	return record, nil
}

// Query fetches the attestation record for claimID. No authorization is
// required; the read has no side effects on stored state.
func (s *Store) Query(ctx context.Context, claimID interfaces.ClaimID) (*AttestationRecord, error) {
	addr, _, err := DeriveSlotAddress(claimID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrMalformedInput, err)
	}

	payload, err := s.slots.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch attestation slot: %w", err)
	}

	record := new(AttestationRecord)
	if err := record.UnmarshalBinary(payload); err != nil {
		return nil, fmt.Errorf("corrupt attestation slot %s: %w", addr, err)
	}

	return record, nil
}

// emit publishes the write notification. Delivery is best-effort: sink
// failures are logged and never surfaced to the caller, since the durable
// record is authoritative.
func (s *Store) emit(ctx context.Context, record *AttestationRecord) {
	if s.sink == nil {
		return
	}
	if err := s.sink.ProofAttested(ctx, record.Event()); err != nil {
		s.log.Warn("Failed to publish attestation event",
			slog.String("sink", s.sink.Name()),
			slog.String("claim_id", record.ClaimID.String()),
			"err", err)
	}
}
