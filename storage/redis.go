package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/x402labs/attestation-ledger/interfaces"
)

// keyPrefix namespaces attestation slots within a shared Redis keyspace.
const keyPrefix = "attestation:"

// RedisSlotStore implements a slot store on Redis. Write-once semantics come
// from SET NX, which atomically creates the key only when absent. Keys are
// written without TTL; permanence depends on the Redis persistence
// configuration.
type RedisSlotStore struct {
	client      *redis.Client
	log         *slog.Logger
	locationURI string
}

// NewRedisSlotStore creates a new Redis slot store from standard options.
func NewRedisSlotStore(addr, password string, db int, log *slog.Logger) *RedisSlotStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSlotStore{
		client:      client,
		log:         log,
		locationURI: fmt.Sprintf("redis://%s/%d", addr, db),
	}
}

// PutIfAbsent stores the slot payload with SET NX.
// Returns ErrAlreadyExists if the key was already set.
func (b *RedisSlotStore) PutIfAbsent(ctx context.Context, addr interfaces.SlotAddress, data []byte) error {
	created, err := b.client.SetNX(ctx, keyPrefix+addr.String(), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if !created {
		return interfaces.ErrAlreadyExists
	}

	b.log.Debug("Stored attestation slot in Redis",
		slog.String("slot", addr.String()),
		slog.Int("size", len(data)))

	return nil
}

// Get retrieves a slot payload from Redis by address.
// Returns ErrNotFound if the key doesn't exist.
func (b *RedisSlotStore) Get(ctx context.Context, addr interfaces.SlotAddress) ([]byte, error) {
	data, err := b.client.Get(ctx, keyPrefix+addr.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	return data, nil
}

// Available checks if the Redis server answers a ping.
func (b *RedisSlotStore) Available(ctx context.Context) bool {
	if err := b.client.Ping(ctx).Err(); err != nil {
		b.log.Warn("Redis slot store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this slot store.
func (b *RedisSlotStore) Name() string {
	return "redis"
}

// LocationURI returns the URI that identifies this slot store.
func (b *RedisSlotStore) LocationURI() string {
	return b.locationURI
}
