package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrAlreadyExists is returned when a write targets a slot that is
	// already occupied. Slots are write-once: there is no overwrite, update,
	// or delete through any interface.
	ErrAlreadyExists = errors.New("attestation already exists")

	// ErrNotFound is returned when no record exists at the derived address.
	// It does not distinguish a claim ID that was never valid from one that
	// was never attested.
	ErrNotFound = errors.New("attestation not found")

	// ErrUnauthorized is returned when the caller's signature does not
	// verify or the signer is not permitted to allocate attestation slots.
	ErrUnauthorized = errors.New("caller not authorized to attest")

	// ErrMalformedInput is returned for any field outside its fixed width or
	// an invalid signature encoding, before any storage interaction.
	ErrMalformedInput = errors.New("malformed attestation input")

	// ErrBackendUnavailable is returned when a storage substrate is not
	// accessible. The ledger never retries; retry policy belongs to callers.
	ErrBackendUnavailable = errors.New("slot store unavailable")

	// ErrInvalidLocationURI is returned when a slot store URI is malformed
	// or names an unsupported scheme.
	ErrInvalidLocationURI = errors.New("invalid slot store location URI")
)

// SlotStore is the storage substrate beneath the ledger: a flat map of
// 32-byte slot addresses to opaque payloads with create-once semantics.
//
// PutIfAbsent must be atomic: under concurrent writers to the same address
// exactly one succeeds and all others observe ErrAlreadyExists. A payload
// written by a successful PutIfAbsent is immediately visible to Get.
type SlotStore interface {
	// PutIfAbsent stores data at addr only if the slot is empty.
	// Returns ErrAlreadyExists if the slot is occupied.
	PutIfAbsent(ctx context.Context, addr SlotAddress, data []byte) error

	// Get retrieves the payload stored at addr.
	// Returns ErrNotFound if the slot is empty.
	Get(ctx context.Context, addr SlotAddress) ([]byte, error)

	// Available checks if the substrate is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this store.
	LocationURI() string
}

// AttestationEvent is the notification payload published after every
// successful write. It carries enough for off-chain indexers to reconstruct
// the record without reading storage; the stored record stays authoritative.
type AttestationEvent struct {
	ClaimID      ClaimID
	ProofHash    ProofHash
	PayoutAmount uint64
	AttestedAt   int64
}

// EventSink receives write notifications. Delivery is best-effort and
// fire-and-forget: a sink error never fails the write that produced it.
type EventSink interface {
	// ProofAttested publishes one notification for a successful write.
	ProofAttested(ctx context.Context, event AttestationEvent) error

	// Name returns identifier for logging.
	Name() string
}

// SlotStoreLocation represents URI for a slot store substrate.
type SlotStoreLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewSlotStoreLocation creates a new store location from a URI string with
// validation.
func NewSlotStoreLocation(uri string) (SlotStoreLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return SlotStoreLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	switch parsed.Scheme {
	case "memory", "file", "s3", "vault", "redis", "sqlite", "postgres":
		// Valid scheme
	default:
		return SlotStoreLocation{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocationURI, parsed.Scheme)
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return SlotStoreLocation{
		Raw:    uri,
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc SlotStoreLocation) String() string {
	return loc.Raw
}

// GetParam returns a query parameter value.
func (loc SlotStoreLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// SlotStoreFactory creates slot stores from location URIs.
type SlotStoreFactory interface {
	// SlotStoreFor creates a store from a URI.
	// Supports memory://, file://, s3://, vault://, redis://, sqlite://, postgres://
	SlotStoreFor(location SlotStoreLocation) (SlotStore, error)

	// CreateMultiStore creates an aggregated store over several substrates.
	CreateMultiStore(locations []SlotStoreLocation) (SlotStore, error)
}
