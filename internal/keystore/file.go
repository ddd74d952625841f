package keystore

import (
	"context"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/validation"
)

const (
	plainBlockType  = "PRIVATE KEY"
	sealedBlockType = "DELTA SEALED PRIVATE KEY"
	sealerHeader    = "Sealer"
)

// FileStore keeps one PEM file per identity and purpose: <dir>/<id>.signing.pem and
// <dir>/<id>.crypto.pem. With a nil sealer keys are written as plain PKCS#8.
type FileStore struct {
	dir    string
	sealer Sealer
}

// NewFileStore creates a file store rooted at dir.
func NewFileStore(dir string, sealer Sealer) *FileStore {
	return &FileStore{dir: dir, sealer: sealer}
}

// PrivateSigningKey implements KeyStore.
func (f *FileStore) PrivateSigningKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error) {
	return f.load(ctx, identityID, SigningPurpose)
}

// PrivateEncryptionKey implements KeyStore.
func (f *FileStore) PrivateEncryptionKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error) {
	return f.load(ctx, identityID, EncryptionPurpose)
}

// StoreKeys implements Writer.
func (f *FileStore) StoreKeys(ctx context.Context, identityID string, keys *KeyPair) error {
	if err := validation.CheckID("identity_id", identityID); err != nil {
		return err
	}
	if keys == nil || keys.Signing == nil || keys.Encryption == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "both private keys are required")
	}
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create key store directory %s: %w", f.dir, err)
	}
	for _, purpose := range []Purpose{SigningPurpose, EncryptionPurpose} {
		if err := f.store(ctx, identityID, purpose, keys.key(purpose)); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileStore) path(identityID string, purpose Purpose) string {
	return filepath.Join(f.dir, fmt.Sprintf("%s.%s.pem", identityID, purpose))
}

func aad(identityID string, purpose Purpose) []byte {
	return []byte(identityID + "/" + string(purpose))
}

func (f *FileStore) store(ctx context.Context, identityID string, purpose Purpose, key *rsa.PrivateKey) error {
	der, err := marshalPrivateKey(key)
	if err != nil {
		return err
	}
	defer zero(der)

	block := &pem.Block{Type: plainBlockType, Bytes: der}
	if f.sealer != nil {
		sealed, headers, err := f.sealer.Seal(ctx, der, aad(identityID, purpose))
		if err != nil {
			return err
		}
		headers[sealerHeader] = f.sealer.Name()
		block = &pem.Block{Type: sealedBlockType, Headers: headers, Bytes: sealed}
	}

	path := f.path(identityID, purpose)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary key file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err := pem.Encode(tmp, block); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to PEM encode %s key: %w", purpose, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict key file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close key file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move key file into place at %s: %w", path, err)
	}
	return nil
}

func (f *FileStore) load(ctx context.Context, identityID string, purpose Purpose) (*rsa.PrivateKey, error) {
	if err := validation.CheckID("identity_id", identityID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(identityID, purpose))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrapf(ErrKeyNotFound, "%s key for identity %s", purpose, identityID)
		}
		return nil, fmt.Errorf("failed to read %s key for identity %s: %w", purpose, identityID, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block for identity %s", identityID)
	}

	switch block.Type {
	case plainBlockType:
		return parsePrivateKey(block.Bytes)
	case sealedBlockType:
		if f.sealer == nil {
			return nil, apperrors.Wrap(ErrSealBroken, "key is sealed but no sealer is configured")
		}
		if name := block.Headers[sealerHeader]; name != f.sealer.Name() {
			return nil, apperrors.Wrapf(ErrSealBroken, "key was sealed with %q", name)
		}
		der, err := f.sealer.Open(ctx, block.Bytes, aad(identityID, purpose), block.Headers)
		if err != nil {
			return nil, err
		}
		defer zero(der)
		return parsePrivateKey(der)
	default:
		return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
	}
}
