package store

import (
	"context"
	"fmt"
)

// Cipher seals and opens record payloads
type Cipher interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

// EncryptedStore encrypts values before handing them to the wrapped store.
// Keys are stored in clear.
type EncryptedStore struct {
	inner  Store
	cipher Cipher
}

// NewEncryptedStore wraps inner with cipher
func NewEncryptedStore(inner Store, cipher Cipher) *EncryptedStore {
	return &EncryptedStore{inner: inner, cipher: cipher}
}

func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plaintext, err := s.cipher.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt record %s: %w", key, err)
	}
	return plaintext, nil
}

func (s *EncryptedStore) Put(ctx context.Context, key string, value []byte) error {
	sealed, err := s.cipher.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt record %s: %w", key, err)
	}
	return s.inner.Put(ctx, key, sealed)
}

func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *EncryptedStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *EncryptedStore) Close() error {
	return s.inner.Close()
}
