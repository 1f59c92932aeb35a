package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS kv_records (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresStore keeps records in a single key/value table
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore creates a PostgresStore on an existing pool and ensures the table exists
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to create kv_records table: %w", err)
	}

	return &PostgresStore{
		db:     db,
		logger: logger,
	}, nil
}

// Get retrieves a record by key
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_records WHERE key = $1`

	var value []byte
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to get record", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return value, nil
}

// Put inserts or replaces a record
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_records (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		s.logger.Error("failed to put record", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to put record: %w", err)
	}

	return nil
}

// Delete removes a record; deleting a missing key is not an error
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM kv_records WHERE key = $1`, key); err != nil {
		s.logger.Error("failed to delete record", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
