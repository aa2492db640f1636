package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// FileSlotStore implements a slot store on the local file system. Each slot
// is one file named by the hex slot address; O_EXCL creation provides the
// atomic create-once semantics the ledger requires.
type FileSlotStore struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileSlotStore creates a new file slot store rooted at baseDir.
// The slot directory is created if it doesn't exist.
func NewFileSlotStore(baseDir string, log *slog.Logger) (*FileSlotStore, error) {
	slotDir := filepath.Join(baseDir, "attestations")
	if err := os.MkdirAll(slotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}

	return &FileSlotStore{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// PutIfAbsent writes the slot file with O_CREATE|O_EXCL so that a second
// writer for the same address deterministically fails.
func (b *FileSlotStore) PutIfAbsent(ctx context.Context, addr interfaces.SlotAddress, data []byte) error {
	slotPath := b.getSlotPath(addr)

	f, err := os.OpenFile(slotPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return interfaces.ErrAlreadyExists
		}
		return fmt.Errorf("%w: failed to create slot file: %v", interfaces.ErrBackendUnavailable, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		// A torn slot file must not shadow the address forever.
		os.Remove(slotPath)
		return fmt.Errorf("%w: failed to write slot file: %v", interfaces.ErrBackendUnavailable, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(slotPath)
		return fmt.Errorf("%w: failed to close slot file: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored attestation slot in file",
		slog.String("path", slotPath),
		slog.Int("size", len(data)))

	return nil
}

// Get retrieves a slot payload by address.
// Returns ErrNotFound if the slot file doesn't exist.
func (b *FileSlotStore) Get(ctx context.Context, addr interfaces.SlotAddress) ([]byte, error) {
	slotPath := b.getSlotPath(addr)

	data, err := os.ReadFile(slotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to read slot file: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Fetched attestation slot from file",
		slog.String("path", slotPath),
		slog.Int("size", len(data)))

	return data, nil
}

// Available checks if the store is accessible by verifying the base directory
// exists.
func (b *FileSlotStore) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File slot store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this slot store.
func (b *FileSlotStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this slot store.
func (b *FileSlotStore) LocationURI() string {
	return b.locationURI
}

func (b *FileSlotStore) getSlotPath(addr interfaces.SlotAddress) string {
	return filepath.Join(b.baseDir, "attestations", addr.String())
}
