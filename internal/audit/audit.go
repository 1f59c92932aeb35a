package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vcscsvcscs/aidoctor-pro/internal/store"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
	OperationLogin  OperationType = "LOGIN"
	OperationLogout OperationType = "LOGOUT"
)

// ResourceType represents the type of resource being accessed
type ResourceType string

const (
	ResourceAccount      ResourceType = "account"
	ResourceSession      ResourceType = "session"
	ResourceProfile      ResourceType = "health_profile"
	ResourceConsultation ResourceType = "consultation"
)

// maxEntries bounds the per-account trail
const maxEntries = 100

// Entry represents an audit log entry
type Entry struct {
	AccountID     string        `json:"accountId"`
	OperationType OperationType `json:"operation"`
	ResourceType  ResourceType  `json:"resourceType"`
	ResourceID    string        `json:"resourceId,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Logger handles audit logging. Entries go to the structured logger and to a
// capped per-account list in the store.
type Logger struct {
	store     store.Store
	namespace string
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewLogger creates a new audit logger
func NewLogger(s store.Store, namespace string, logger *zap.Logger) *Logger {
	return &Logger{
		store:     s,
		namespace: namespace,
		logger:    logger,
	}
}

func (l *Logger) key(accountID string) string {
	return store.Key(l.namespace, "audit", accountID)
}

// Log appends an audit log entry
func (l *Logger) Log(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	l.logger.Info("Audit log entry",
		zap.String("account_id", entry.AccountID),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
	)

	if entry.AccountID == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx, entry.AccountID)
	if err != nil {
		l.logger.Warn("Discarding unreadable audit trail", zap.Error(err), zap.String("account_id", entry.AccountID))
		entries = nil
	}

	entries = append([]Entry{entry}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal audit trail: %w", err)
	}

	if err := l.store.Put(ctx, l.key(entry.AccountID), data); err != nil {
		l.logger.Error("Failed to write audit log",
			zap.Error(err),
			zap.String("account_id", entry.AccountID),
			zap.String("operation", string(entry.OperationType)),
		)
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}

// Record logs an entry and only reports failures to the structured logger.
// Audit failures never block the operation being audited.
func (l *Logger) Record(ctx context.Context, accountID string, op OperationType, resource ResourceType, resourceID string) {
	if l == nil {
		return
	}
	err := l.Log(ctx, Entry{
		AccountID:     accountID,
		OperationType: op,
		ResourceType:  resource,
		ResourceID:    resourceID,
	})
	if err != nil {
		l.logger.Warn("audit log not persisted", zap.Error(err))
	}
}

// Recent returns up to limit entries for an account, newest first
func (l *Logger) Recent(ctx context.Context, accountID string, limit int) ([]Entry, error) {
	entries, err := l.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (l *Logger) load(ctx context.Context, accountID string) ([]Entry, error) {
	data, err := l.store.Get(ctx, l.key(accountID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse audit trail: %w", err)
	}
	return entries, nil
}
