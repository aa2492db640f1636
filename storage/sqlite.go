package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// SQLiteSlotStore implements a slot store on an embedded SQLite database.
// Write-once semantics come from the primary-key constraint on the slot
// address: a duplicate INSERT fails atomically.
type SQLiteSlotStore struct {
	db          *sql.DB
	log         *slog.Logger
	locationURI string
}

// NewSQLiteSlotStore opens (or creates) the SQLite database at path and
// ensures the slot table exists.
func NewSQLiteSlotStore(path string, log *slog.Logger) (*SQLiteSlotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Slots are written once and never updated, so a single writer is fine.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS attestation_slots (
		address TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (unixepoch())
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create slot table: %w", err)
	}

	return &SQLiteSlotStore{
		db:          db,
		log:         log,
		locationURI: fmt.Sprintf("sqlite://%s", path),
	}, nil
}

// PutIfAbsent inserts the slot row; the primary key rejects duplicates.
func (b *SQLiteSlotStore) PutIfAbsent(ctx context.Context, addr interfaces.SlotAddress, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO attestation_slots (address, payload) VALUES (?, ?)`,
		addr.String(), data)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return interfaces.ErrAlreadyExists
		}
		return fmt.Errorf("%w: failed to insert slot row: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored attestation slot in sqlite",
		slog.String("slot", addr.String()),
		slog.Int("size", len(data)))

	return nil
}

// Get retrieves a slot payload by address.
// Returns ErrNotFound if no row exists.
func (b *SQLiteSlotStore) Get(ctx context.Context, addr interfaces.SlotAddress) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT payload FROM attestation_slots WHERE address = ?`,
		addr.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to query slot row: %v", interfaces.ErrBackendUnavailable, err)
	}
	return data, nil
}

// Available checks if the database answers a ping.
func (b *SQLiteSlotStore) Available(ctx context.Context) bool {
	if err := b.db.PingContext(ctx); err != nil {
		b.log.Warn("SQLite slot store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this slot store.
func (b *SQLiteSlotStore) Name() string {
	return "sqlite"
}

// LocationURI returns the URI that identifies this slot store.
func (b *SQLiteSlotStore) LocationURI() string {
	return b.locationURI
}

// Close releases the underlying database handle.
func (b *SQLiteSlotStore) Close() error {
	return b.db.Close()
}
