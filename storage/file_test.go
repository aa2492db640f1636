package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/interfaces"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileSlotStore(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()

	store, err := NewFileSlotStore(baseDir, discardLogger())
	require.NoError(t, err)

	addr := testAddr(1)
	payload := []byte("attestation payload")

	_, err = store.Get(ctx, addr)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	require.NoError(t, store.PutIfAbsent(ctx, addr, payload))

	fetched, err := store.Get(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, payload, fetched)

	// A second write for the same address fails on the existing file.
	err = store.PutIfAbsent(ctx, addr, []byte("different payload"))
	assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)

	// One file per slot, named by the hex address.
	_, err = os.Stat(filepath.Join(baseDir, "attestations", addr.String()))
	assert.NoError(t, err)

	assert.True(t, store.Available(ctx))
}

func TestFileSlotStoreUnavailable(t *testing.T) {
	baseDir := t.TempDir()
	store, err := NewFileSlotStore(baseDir, discardLogger())
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(baseDir))
	assert.False(t, store.Available(context.Background()))
}

func TestFileSlotStoreSubstrateFailure(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	store, err := NewFileSlotStore(baseDir, discardLogger())
	require.NoError(t, err)

	// A directory squatting on the slot path makes the read fail with a
	// substrate error, not NotFound.
	addr := testAddr(7)
	require.NoError(t, os.Mkdir(filepath.Join(baseDir, "attestations", addr.String()), 0755))
	_, err = store.Get(ctx, addr)
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)

	// With the base directory gone, writes fail as substrate errors too.
	require.NoError(t, os.RemoveAll(baseDir))
	err = store.PutIfAbsent(ctx, testAddr(8), []byte("payload"))
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
}
