package storage

import (
	"context"
	"sync"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// MemorySlotStore implements an in-process slot store. It is intended for
// development and tests; nothing survives a restart.
type MemorySlotStore struct {
	mu    sync.Mutex
	slots map[interfaces.SlotAddress][]byte
}

// NewMemorySlotStore creates an empty in-memory slot store.
func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{
		slots: make(map[interfaces.SlotAddress][]byte),
	}
}

// PutIfAbsent stores data at addr only if the slot is empty.
func (m *MemorySlotStore) PutIfAbsent(ctx context.Context, addr interfaces.SlotAddress, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, occupied := m.slots[addr]; occupied {
		return interfaces.ErrAlreadyExists
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.slots[addr] = stored
	return nil
}

// Get retrieves the payload stored at addr.
func (m *MemorySlotStore) Get(ctx context.Context, addr interfaces.SlotAddress) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, occupied := m.slots[addr]
	if !occupied {
		return nil, interfaces.ErrNotFound
	}

	data := make([]byte, len(stored))
	copy(data, stored)
	return data, nil
}

// Available always reports true for the in-memory store.
func (m *MemorySlotStore) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this slot store.
func (m *MemorySlotStore) Name() string {
	return "memory"
}

// LocationURI returns the URI that identifies this slot store.
func (m *MemorySlotStore) LocationURI() string {
	return "memory://"
}
