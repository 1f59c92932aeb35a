package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/audit"
	"github.com/vcscsvcscs/aidoctor-pro/internal/security"
	"github.com/vcscsvcscs/aidoctor-pro/internal/store"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// DefaultMinPasswordLength is the shortest accepted password
const DefaultMinPasswordLength = 6

// BucketInitializer creates the per-account data bucket on first use
type BucketInitializer interface {
	Initialize(ctx context.Context, accountID string) error
}

// Session is an authenticated session handed to the client as a signed token
type Session struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
}

type accountRecord struct {
	model.Account
	Verifier string `json:"verifier"`
}

type sessionRecord struct {
	AccountID string    `json:"accountId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service is the credential store: account records keyed by lower-cased
// email under one index key, plus one pointer record per live session.
type Service struct {
	store             store.Store
	buckets           BucketInitializer
	hasher            *security.PasswordHasher
	tokens            *TokenIssuer
	audit             *audit.Logger
	namespace         string
	minPasswordLength int
	logger            *zap.Logger
	now               func() time.Time

	mu sync.Mutex
}

// Options configures the credential store
type Options struct {
	Namespace         string
	MinPasswordLength int
}

// NewService creates a new auth Service
func NewService(
	s store.Store,
	buckets BucketInitializer,
	hasher *security.PasswordHasher,
	tokens *TokenIssuer,
	auditLogger *audit.Logger,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultMinPasswordLength
	}
	return &Service{
		store:             s,
		buckets:           buckets,
		hasher:            hasher,
		tokens:            tokens,
		audit:             auditLogger,
		namespace:         opts.Namespace,
		minPasswordLength: opts.MinPasswordLength,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *Service) accountsKey() string {
	return store.Key(s.namespace, "accounts")
}

func (s *Service) sessionKey(sessionID string) string {
	return store.Key(s.namespace, "session", sessionID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}

// Register creates an account and opens a session for it
func (s *Service) Register(ctx context.Context, email, password, name string) (*model.Account, *Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, nil, apperr.New(apperr.CategoryValidation, apperr.CodeMissingName, "Please enter your name.")
	}
	if !validEmail(email) {
		return nil, nil, apperr.New(apperr.CategoryValidation, apperr.CodeInvalidEmail, "Please enter a valid email address.")
	}
	if utf8.RuneCountInString(password) < s.minPasswordLength {
		return nil, nil, apperr.New(apperr.CategoryValidation, apperr.CodeWeakCredential,
			fmt.Sprintf("Password should be at least %d characters.", s.minPasswordLength))
	}

	verifier, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	if _, exists := accounts[email]; exists {
		s.mu.Unlock()
		return nil, nil, apperr.New(apperr.CategoryAuth, apperr.CodeDuplicateEmail,
			"This email is already registered. Please sign in instead.")
	}

	account := model.Account{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	accounts[email] = accountRecord{Account: account, Verifier: verifier}

	if err := s.saveAccounts(ctx, accounts); err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	s.mu.Unlock()

	s.logger.Info("account registered", zap.String("account_id", account.ID))
	s.audit.Record(ctx, account.ID, audit.OperationCreate, audit.ResourceAccount, account.ID)

	session, err := s.openSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return &account, session, nil
}

// Login verifies the credentials and opens a session
func (s *Service) Login(ctx context.Context, email, password string) (*model.Account, *Session, error) {
	email = normalizeEmail(email)

	s.mu.Lock()
	accounts, err := s.loadAccounts(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	record, ok := accounts[email]
	if !ok {
		return nil, nil, apperr.New(apperr.CategoryAuth, apperr.CodeNotFound, "No account found with this email.")
	}

	match, err := s.hasher.Verify(password, record.Verifier)
	if err != nil {
		s.logger.Error("stored verifier is unreadable", zap.String("account_id", record.ID), zap.Error(err))
		return nil, nil, apperr.New(apperr.CategoryAuth, apperr.CodeInvalidCredential, "Invalid email or password. Please try again.")
	}
	if !match {
		return nil, nil, apperr.New(apperr.CategoryAuth, apperr.CodeInvalidCredential, "Incorrect password. Please try again.")
	}

	session, err := s.openSession(ctx, record.ID)
	if err != nil {
		return nil, nil, err
	}

	account := record.Account
	s.audit.Record(ctx, account.ID, audit.OperationLogin, audit.ResourceSession, session.ID)
	return &account, session, nil
}

// Logout revokes the session behind token. Unknown or malformed tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.parse(token, s.now())
	if err != nil && !errors.Is(err, errTokenExpired) {
		return nil
	}

	if err := s.store.Delete(ctx, s.sessionKey(claims.SessionID)); err != nil {
		return apperr.Storage("failed to revoke session", err)
	}

	s.audit.Record(ctx, claims.Subject, audit.OperationLogout, audit.ResourceSession, claims.SessionID)
	return nil
}

// CurrentAccount resolves a token to its account. It returns nil for guests
// and for expired, revoked or malformed tokens.
func (s *Service) CurrentAccount(ctx context.Context, token string) *model.Account {
	if token == "" {
		return nil
	}

	claims, err := s.tokens.parse(token, s.now())
	if errors.Is(err, errTokenExpired) {
		s.dropSession(ctx, claims.SessionID)
		return nil
	}
	if err != nil {
		return nil
	}

	data, err := s.store.Get(ctx, s.sessionKey(claims.SessionID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to read session pointer", zap.Error(err))
		}
		return nil
	}

	var session sessionRecord
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Warn("corrupt session pointer", zap.String("session_id", claims.SessionID), zap.Error(err))
		return nil
	}
	if session.AccountID != claims.Subject {
		return nil
	}
	if s.now().After(session.ExpiresAt) {
		s.dropSession(ctx, claims.SessionID)
		return nil
	}

	return s.accountByID(ctx, session.AccountID)
}

// dropSession deletes an expired session pointer
func (s *Service) dropSession(ctx context.Context, sessionID string) {
	if err := s.store.Delete(ctx, s.sessionKey(sessionID)); err != nil {
		s.logger.Warn("failed to delete expired session", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	s.logger.Debug("expired session removed", zap.String("session_id", sessionID))
}

func (s *Service) accountByID(ctx context.Context, accountID string) *model.Account {
	s.mu.Lock()
	accounts, err := s.loadAccounts(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("failed to load accounts", zap.Error(err))
		return nil
	}

	for _, record := range accounts {
		if record.ID == accountID {
			account := record.Account
			return &account
		}
	}
	return nil
}

func (s *Service) openSession(ctx context.Context, accountID string) (*Session, error) {
	now := s.now().UTC()
	sessionID := uuid.New().String()

	token, expiresAt, err := s.tokens.issue(sessionID, accountID, now)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(sessionRecord{AccountID: accountID, CreatedAt: now, ExpiresAt: expiresAt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.store.Put(ctx, s.sessionKey(sessionID), data); err != nil {
		return nil, apperr.Storage("failed to persist session", err)
	}

	if s.buckets != nil {
		if err := s.buckets.Initialize(ctx, accountID); err != nil {
			s.logger.Warn("failed to initialize user data", zap.String("account_id", accountID), zap.Error(err))
		}
	}

	return &Session{ID: sessionID, AccountID: accountID, Token: token, ExpiresAt: expiresAt}, nil
}

// loadAccounts must be called with s.mu held
func (s *Service) loadAccounts(ctx context.Context) (map[string]accountRecord, error) {
	data, err := s.store.Get(ctx, s.accountsKey())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return map[string]accountRecord{}, nil
		}
		return nil, apperr.Storage("failed to read accounts", err)
	}

	accounts := map[string]accountRecord{}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, apperr.Storage("account index is unreadable", err)
	}
	return accounts, nil
}

func (s *Service) saveAccounts(ctx context.Context, accounts map[string]accountRecord) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := s.store.Put(ctx, s.accountsKey(), data); err != nil {
		return apperr.Storage("failed to save accounts", err)
	}
	return nil
}
