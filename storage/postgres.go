package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/x402labs/attestation-ledger/interfaces"
)

// attestationSlotModel is the persisted row; the address primary key enforces
// write-once at the database level.
type attestationSlotModel struct {
	Address   string `gorm:"primaryKey"`
	Payload   []byte `gorm:"type:bytea;not null"`
	CreatedAt int64  `gorm:"autoCreateTime;not null"`
}

func (attestationSlotModel) TableName() string {
	return "attestation_slots"
}

// PostgresSlotStore implements a slot store on PostgreSQL via gorm.
// A duplicate insert surfaces as gorm.ErrDuplicatedKey and maps to
// ErrAlreadyExists; no upsert clauses are ever used.
type PostgresSlotStore struct {
	db          *gorm.DB
	log         *slog.Logger
	locationURI string
}

// NewPostgresSlotStore connects to PostgreSQL with the given DSN and
// migrates the slot table.
func NewPostgresSlotStore(dsn string, log *slog.Logger) (*PostgresSlotStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&attestationSlotModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate slot table: %w", err)
	}

	return &PostgresSlotStore{
		db:          db,
		log:         log,
		locationURI: "postgres://",
	}, nil
}

// PutIfAbsent inserts the slot row; the primary key rejects duplicates.
func (b *PostgresSlotStore) PutIfAbsent(ctx context.Context, addr interfaces.SlotAddress, data []byte) error {
	row := attestationSlotModel{
		Address: addr.String(),
		Payload: data,
	}

	if err := b.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return interfaces.ErrAlreadyExists
		}
		return fmt.Errorf("%w: failed to insert slot row: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored attestation slot in postgres",
		slog.String("slot", addr.String()),
		slog.Int("size", len(data)))

	return nil
}

// Get retrieves a slot payload by address.
// Returns ErrNotFound if no row exists.
func (b *PostgresSlotStore) Get(ctx context.Context, addr interfaces.SlotAddress) ([]byte, error) {
	var row attestationSlotModel
	err := b.db.WithContext(ctx).First(&row, "address = ?", addr.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to query slot row: %v", interfaces.ErrBackendUnavailable, err)
	}
	return row.Payload, nil
}

// Available checks if the database connection is healthy.
func (b *PostgresSlotStore) Available(ctx context.Context) bool {
	sqlDB, err := b.db.DB()
	if err != nil {
		return false
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		b.log.Warn("Postgres slot store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this slot store.
func (b *PostgresSlotStore) Name() string {
	return "postgres"
}

// LocationURI returns the URI that identifies this slot store.
func (b *PostgresSlotStore) LocationURI() string {
	return b.locationURI
}
