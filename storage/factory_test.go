package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/interfaces"
)

func mustLocation(t *testing.T, uri string) interfaces.SlotStoreLocation {
	t.Helper()
	location, err := interfaces.NewSlotStoreLocation(uri)
	require.NoError(t, err)
	return location
}

func TestSlotStoreLocationParsing(t *testing.T) {
	location := mustLocation(t, "s3://key:secret@bucket/prefix?region=eu-west-1")
	assert.Equal(t, "s3", location.Scheme)
	assert.Equal(t, "bucket", location.Host)
	assert.Equal(t, "/prefix", location.Path)
	assert.Equal(t, "key:secret", location.Auth)
	assert.Equal(t, "eu-west-1", location.GetParam("region"))

	_, err := interfaces.NewSlotStoreLocation("ftp://host/path")
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestFactoryMemoryStore(t *testing.T) {
	factory := NewSlotStoreFactory(discardLogger())

	store, err := factory.SlotStoreFor(mustLocation(t, "memory://"))
	require.NoError(t, err)
	assert.IsType(t, &MemorySlotStore{}, store)
}

func TestFactoryFileStore(t *testing.T) {
	factory := NewSlotStoreFactory(discardLogger())
	baseDir := t.TempDir()

	store, err := factory.SlotStoreFor(mustLocation(t, fmt.Sprintf("file://%s", baseDir)))
	require.NoError(t, err)
	assert.IsType(t, &FileSlotStore{}, store)
	assert.True(t, store.Available(context.Background()))
}

func TestFactoryRedisStoreInvalidDB(t *testing.T) {
	factory := NewSlotStoreFactory(discardLogger())

	_, err := factory.SlotStoreFor(mustLocation(t, "redis://localhost:6379/notanumber"))
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestFactoryS3StoreRequiresBucket(t *testing.T) {
	factory := NewSlotStoreFactory(discardLogger())

	_, err := factory.SlotStoreFor(mustLocation(t, "s3:///prefix-only"))
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestCreateMultiStore(t *testing.T) {
	factory := NewSlotStoreFactory(discardLogger())

	t.Run("no locations", func(t *testing.T) {
		_, err := factory.CreateMultiStore(nil)
		assert.Error(t, err)
	})

	t.Run("single store is returned unwrapped", func(t *testing.T) {
		store, err := factory.CreateMultiStore([]interfaces.SlotStoreLocation{
			mustLocation(t, "memory://"),
		})
		require.NoError(t, err)
		assert.IsType(t, &MemorySlotStore{}, store)
	})

	t.Run("multiple stores are aggregated", func(t *testing.T) {
		store, err := factory.CreateMultiStore([]interfaces.SlotStoreLocation{
			mustLocation(t, "memory://"),
			mustLocation(t, fmt.Sprintf("file://%s", t.TempDir())),
		})
		require.NoError(t, err)
		assert.IsType(t, &MultiSlotStore{}, store)
	})

	t.Run("any invalid location fails the whole configuration", func(t *testing.T) {
		_, err := factory.CreateMultiStore([]interfaces.SlotStoreLocation{
			mustLocation(t, "memory://"),
			mustLocation(t, "redis://localhost:6379/bad"),
		})
		assert.Error(t, err)
	})
}

func TestMultiStoreWriteOnceEndToEnd(t *testing.T) {
	ctx := context.Background()
	factory := NewSlotStoreFactory(discardLogger())

	store, err := factory.CreateMultiStore([]interfaces.SlotStoreLocation{
		mustLocation(t, "memory://"),
		mustLocation(t, fmt.Sprintf("file://%s", t.TempDir())),
	})
	require.NoError(t, err)

	addr := testAddr(9)
	require.NoError(t, store.PutIfAbsent(ctx, addr, []byte("first")))
	assert.ErrorIs(t, store.PutIfAbsent(ctx, addr, []byte("second")), interfaces.ErrAlreadyExists)

	fetched, err := store.Get(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), fetched)
}
