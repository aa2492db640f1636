package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// MultiSlotStore aggregates several slot stores. The first store is
// authoritative: it alone decides whether a slot is free, so the write-once
// guarantee is exactly as strong as the primary's atomic create. The
// remaining stores are best-effort replicas for read availability.
type MultiSlotStore struct {
	stores []interfaces.SlotStore
	log    *slog.Logger
}

// NewMultiSlotStore creates an aggregated store. The first element of stores
// is the authoritative substrate.
func NewMultiSlotStore(stores []interfaces.SlotStore, logger *slog.Logger) *MultiSlotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSlotStore{
		stores: stores,
		log:    logger,
	}
}

// PutIfAbsent allocates the slot on the authoritative store, then replicates
// to the remaining stores. Replication failures are logged, not surfaced:
// the primary copy is the durable one.
func (m *MultiSlotStore) PutIfAbsent(ctx context.Context, addr interfaces.SlotAddress, data []byte) error {
	if len(m.stores) == 0 {
		return fmt.Errorf("no slot stores configured")
	}

	primary := m.stores[0]
	if err := primary.PutIfAbsent(ctx, addr, data); err != nil {
		return err
	}

	for _, replica := range m.stores[1:] {
		if err := replica.PutIfAbsent(ctx, addr, data); err != nil && !errors.Is(err, interfaces.ErrAlreadyExists) {
			m.log.Warn("Failed to replicate attestation slot",
				slog.String("store", replica.Name()),
				slog.String("slot", addr.String()),
				"err", err)
		}
	}

	return nil
}

// Get fetches the slot from the first store that has it, preferring the
// authoritative one.
func (m *MultiSlotStore) Get(ctx context.Context, addr interfaces.SlotAddress) ([]byte, error) {
	start := time.Now()
	var errs []error

	for _, store := range m.stores {
		if !store.Available(ctx) {
			m.log.Debug("Slot store unavailable",
				slog.String("store", store.Name()),
				slog.String("slot", addr.String()))
			continue
		}

		data, err := store.Get(ctx, addr)
		if err == nil {
			return data, nil
		}
		if errors.Is(err, interfaces.ErrNotFound) {
			// The authoritative store not having the slot is a definitive
			// answer; replicas may simply lag.
			if store == m.stores[0] {
				return nil, interfaces.ErrNotFound
			}
			continue
		}

		errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		m.log.Debug("Failed to fetch slot from store",
			slog.String("store", store.Name()),
			slog.String("slot", addr.String()),
			"err", err)
	}

	if len(errs) == 0 {
		return nil, interfaces.ErrNotFound
	}

	m.log.Error("All slot stores failed to fetch",
		slog.String("slot", addr.String()),
		slog.Int("failed_stores", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return nil, fmt.Errorf("%w: all stores failed for %s: %v", interfaces.ErrBackendUnavailable, addr, errs)
}

// Available checks if the authoritative store is available. Replicas alone
// cannot accept writes, so they don't count.
func (m *MultiSlotStore) Available(ctx context.Context) bool {
	if len(m.stores) == 0 {
		return false
	}
	return m.stores[0].Available(ctx)
}

// Name returns the name of this store.
func (m *MultiSlotStore) Name() string {
	return "multi-slot"
}

// LocationURI returns the combined URIs of all aggregated stores.
func (m *MultiSlotStore) LocationURI() string {
	var locations []string
	for _, store := range m.stores {
		locations = append(locations, store.LocationURI())
	}
	return strings.Join(locations, ",")
}
