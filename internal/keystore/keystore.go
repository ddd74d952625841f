// Package keystore holds the private key material of local identities. The signer only
// depends on the read-only KeyStore contract; registration additionally needs a Writer.
package keystore

import (
	"context"
	"crypto/rsa"

	apperrors "github.com/allisson/delta/internal/errors"
)

// Purpose distinguishes the two key pairs an identity owns.
type Purpose string

const (
	// SigningPurpose marks the key pair used to sign requests.
	SigningPurpose Purpose = "signing"
	// EncryptionPurpose marks the key pair used to protect secret content.
	EncryptionPurpose Purpose = "crypto"
)

// ErrKeyNotFound indicates the store has no key for the identity and purpose.
var ErrKeyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "key not found")

// KeyStore resolves the private keys of an identity.
type KeyStore interface {
	PrivateSigningKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error)
	PrivateEncryptionKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error)
}

// Writer persists the private keys of a freshly registered identity.
type Writer interface {
	StoreKeys(ctx context.Context, identityID string, keys *KeyPair) error
}

// Store is a KeyStore that can also be written to.
type Store interface {
	KeyStore
	Writer
}

// KeyPair groups the two private keys of an identity.
type KeyPair struct {
	Signing    *rsa.PrivateKey
	Encryption *rsa.PrivateKey
}

func (k *KeyPair) key(purpose Purpose) *rsa.PrivateKey {
	if purpose == SigningPurpose {
		return k.Signing
	}
	return k.Encryption
}
