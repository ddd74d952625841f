package keystore

import (
	"context"
	"crypto/rsa"
	"sync"

	apperrors "github.com/allisson/delta/internal/errors"
)

// MemoryStore keeps keys in process memory. Keys are lost when the process exits.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]*KeyPair
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]*KeyPair)}
}

// PrivateSigningKey implements KeyStore.
func (m *MemoryStore) PrivateSigningKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error) {
	return m.get(identityID, SigningPurpose)
}

// PrivateEncryptionKey implements KeyStore.
func (m *MemoryStore) PrivateEncryptionKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error) {
	return m.get(identityID, EncryptionPurpose)
}

// StoreKeys implements Writer.
func (m *MemoryStore) StoreKeys(ctx context.Context, identityID string, keys *KeyPair) error {
	if keys == nil || keys.Signing == nil || keys.Encryption == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "both private keys are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[identityID] = &KeyPair{Signing: keys.Signing, Encryption: keys.Encryption}
	return nil
}

func (m *MemoryStore) get(identityID string, purpose Purpose) (*rsa.PrivateKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pair, ok := m.keys[identityID]
	if !ok {
		return nil, apperrors.Wrapf(ErrKeyNotFound, "%s key for identity %s", purpose, identityID)
	}
	return pair.key(purpose), nil
}
