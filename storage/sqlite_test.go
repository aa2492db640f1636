package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/interfaces"
)

func TestSQLiteSlotStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewSQLiteSlotStore(filepath.Join(t.TempDir(), "slots.db"), discardLogger())
	require.NoError(t, err)
	defer store.Close()

	addr := testAddr(1)
	payload := []byte("attestation payload")

	_, err = store.Get(ctx, addr)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	require.NoError(t, store.PutIfAbsent(ctx, addr, payload))

	fetched, err := store.Get(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, payload, fetched)

	// The primary key rejects a second insert for the same address.
	err = store.PutIfAbsent(ctx, addr, []byte("different payload"))
	assert.ErrorIs(t, err, interfaces.ErrAlreadyExists)

	assert.True(t, store.Available(ctx))
}

func TestSQLiteSlotStoreSubstrateFailure(t *testing.T) {
	ctx := context.Background()

	store, err := NewSQLiteSlotStore(filepath.Join(t.TempDir(), "slots.db"), discardLogger())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// A closed handle is a substrate failure, not NotFound or AlreadyExists.
	err = store.PutIfAbsent(ctx, testAddr(2), []byte("payload"))
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)

	_, err = store.Get(ctx, testAddr(2))
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)

	assert.False(t, store.Available(ctx))
}
