// Package kms seals key store files through a cloud KMS using gocloud.dev/secrets.
package kms

import (
	"context"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"gocloud.dev/secrets"

	apperrors "github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/keystore"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper is the subset of *secrets.Keeper used for sealing.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// OpenKeeper opens a secrets.Keeper for the KMS provider using the keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func OpenKeeper(ctx context.Context, keyURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

type sealer struct {
	keeper Keeper
}

// NewSealer seals through a KMS keeper. KMS providers take no associated data, so the
// aad is length-prefixed into the plaintext and compared on open.
func NewSealer(keeper Keeper) keystore.Sealer {
	return &sealer{keeper: keeper}
}

func (s *sealer) Name() string {
	return "kms"
}

func (s *sealer) Seal(ctx context.Context, plaintext, aad []byte) ([]byte, map[string]string, error) {
	buf := make([]byte, 0, 4+len(aad)+len(plaintext))
	buf = appendLengthPrefixed(buf, aad)
	buf = append(buf, plaintext...)
	defer zero(buf)

	ciphertext, err := s.keeper.Encrypt(ctx, buf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt with KMS keeper: %w", err)
	}
	return ciphertext, map[string]string{}, nil
}

func (s *sealer) Open(ctx context.Context, ciphertext, aad []byte, headers map[string]string) ([]byte, error) {
	buf, err := s.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(keystore.ErrSealBroken, err.Error())
	}
	if len(buf) < 4 {
		return nil, keystore.ErrSealBroken
	}
	n := binary.BigEndian.Uint32(buf[:4])
	if uint64(len(buf)-4) < uint64(n) {
		return nil, keystore.ErrSealBroken
	}
	if subtle.ConstantTimeCompare(buf[4:4+n], aad) != 1 {
		return nil, apperrors.Wrap(keystore.ErrSealBroken, "key belongs to another identity")
	}
	return buf[4+n:], nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Format: [length (4 bytes)] + [data (length bytes)]
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
