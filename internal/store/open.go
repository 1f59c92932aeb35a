package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendAzblob   = "azblob"
)

// Options configures the backend selected by Open
type Options struct {
	Backend         string
	PostgresURL     string
	SQLitePath      string
	RedisURL        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	Blob            BlobOptions
	// Cipher, when set, wraps the backend in an EncryptedStore
	Cipher Cipher
}

// Open creates the configured backend
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	var (
		s   Store
		err error
	)

	switch opts.Backend {
	case BackendMemory, "":
		s = NewMemoryStore()
	case BackendPostgres:
		s, err = openPostgres(ctx, opts.PostgresURL, logger)
	case BackendSQLite:
		s, err = NewSQLiteStore(opts.SQLitePath, logger)
	case BackendRedis:
		s, err = NewRedisStore(ctx, opts.RedisURL, logger)
	case BackendMongo:
		s, err = NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection, logger)
	case BackendAzblob:
		s, err = NewBlobStore(ctx, opts.Blob, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", opts.Backend, err)
	}

	logger.Info("store opened", zap.String("backend", opts.Backend), zap.Bool("encrypted", opts.Cipher != nil))

	if opts.Cipher != nil {
		return NewEncryptedStore(s, opts.Cipher), nil
	}
	return s, nil
}

func openPostgres(ctx context.Context, url string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := NewPostgresStore(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}
