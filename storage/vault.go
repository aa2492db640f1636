package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/x402labs/attestation-ledger/interfaces"
)

// VaultSlotStore implements a slot store on HashiCorp Vault's KV v2 engine.
// Write-once semantics come from check-and-set with cas=0: the write is only
// accepted when no version of the secret exists yet.
type VaultSlotStore struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultSlotStore creates a new Vault slot store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: path within the mount (e.g. "attestations")
//   - token: Vault token; pass "" to rely on VAULT_TOKEN from the environment
//   - log: structured logger
func NewVaultSlotStore(address, mountPath, dataPath, token string, log *slog.Logger) (*VaultSlotStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	mountPath = strings.TrimSuffix(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultSlotStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// PutIfAbsent writes the slot payload with cas=0 so Vault rejects the write
// if any version already exists at the path.
func (b *VaultSlotStore) PutIfAbsent(ctx context.Context, addr interfaces.SlotAddress, data []byte) error {
	path := b.slotPath(addr)

	_, err := b.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"data": map[string]interface{}{
			"payload": base64.StdEncoding.EncodeToString(data),
		},
		"options": map[string]interface{}{
			"cas": 0,
		},
	})
	if err != nil {
		if strings.Contains(err.Error(), "check-and-set") {
			return interfaces.ErrAlreadyExists
		}
		b.log.Error("Failed to write slot to Vault",
			slog.String("path", path),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored attestation slot in Vault",
		slog.String("path", path),
		slog.Int("size", len(data)))

	return nil
}

// Get retrieves a slot payload from Vault by address.
// Returns ErrNotFound if no secret exists at the derived path.
func (b *VaultSlotStore) Get(ctx context.Context, addr interfaces.SlotAddress) ([]byte, error) {
	path := b.slotPath(addr)

	secret, err := b.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		b.log.Error("Failed to read slot from Vault",
			slog.String("path", path),
			"err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, interfaces.ErrNotFound
	}

	// KV v2 wraps the payload in a "data" map.
	inner, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid data format in Vault response")
	}

	encoded, ok := inner["payload"].(string)
	if !ok {
		return nil, fmt.Errorf("payload key not found in Vault data")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid payload encoding in Vault data: %w", err)
	}

	return data, nil
}

// Available checks if the Vault server responds to a health request.
func (b *VaultSlotStore) Available(ctx context.Context) bool {
	health, err := b.client.Sys().HealthWithContext(ctx)
	if err != nil {
		b.log.Warn("Vault slot store unavailable", "err", err)
		return false
	}
	return health.Initialized && !health.Sealed
}

// Name returns a unique identifier for this slot store.
func (b *VaultSlotStore) Name() string {
	return fmt.Sprintf("vault-%s", b.mountPath)
}

// LocationURI returns the URI that identifies this slot store.
func (b *VaultSlotStore) LocationURI() string {
	return b.locationURI
}

func (b *VaultSlotStore) slotPath(addr interfaces.SlotAddress) string {
	return fmt.Sprintf("%s/data/%s/%s", b.mountPath, b.dataPath, addr.String())
}
