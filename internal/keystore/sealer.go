package keystore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	apperrors "github.com/allisson/delta/internal/errors"
)

// ErrSealBroken indicates sealed key material could not be opened (wrong passphrase,
// wrong KMS key, or a file moved to another identity).
var ErrSealBroken = apperrors.New("sealed key could not be opened")

// Sealer protects private key bytes at rest. The aad binds the sealed bytes to the
// identity and purpose they belong to.
type Sealer interface {
	Name() string
	Seal(ctx context.Context, plaintext, aad []byte) (ciphertext []byte, headers map[string]string, err error)
	Open(ctx context.Context, ciphertext, aad []byte, headers map[string]string) ([]byte, error)
}

// KDFParams are the argon2id parameters used to turn a passphrase into a key.
type KDFParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultKDFParams follow the argon2id recommendation for interactive use.
var DefaultKDFParams = KDFParams{Time: 3, Memory: 64 * 1024, Threads: 4}

type passphraseSealer struct {
	passphrase []byte
	params     KDFParams
}

// NewPassphraseSealer seals with ChaCha20-Poly1305 under an argon2id-derived key.
func NewPassphraseSealer(passphrase string, params KDFParams) Sealer {
	return &passphraseSealer{passphrase: []byte(passphrase), params: params}
}

func (p *passphraseSealer) Name() string {
	return "argon2id-chacha20poly1305"
}

func (p *passphraseSealer) deriveKey(salt []byte, params KDFParams) []byte {
	return argon2.IDKey(p.passphrase, salt, params.Time, params.Memory, params.Threads, chacha20poly1305.KeySize)
}

func (p *passphraseSealer) Seal(ctx context.Context, plaintext, aad []byte) ([]byte, map[string]string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	key := p.deriveKey(salt, p.params)
	defer zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	headers := map[string]string{
		"Salt":        base64.StdEncoding.EncodeToString(salt),
		"Nonce":       base64.StdEncoding.EncodeToString(nonce),
		"KDF-Time":    strconv.FormatUint(uint64(p.params.Time), 10),
		"KDF-Memory":  strconv.FormatUint(uint64(p.params.Memory), 10),
		"KDF-Threads": strconv.FormatUint(uint64(p.params.Threads), 10),
	}
	return aead.Seal(nil, nonce, plaintext, aad), headers, nil
}

func (p *passphraseSealer) Open(ctx context.Context, ciphertext, aad []byte, headers map[string]string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(headers["Salt"])
	if err != nil || len(salt) == 0 {
		return nil, apperrors.Wrap(ErrSealBroken, "missing or invalid salt")
	}
	nonce, err := base64.StdEncoding.DecodeString(headers["Nonce"])
	if err != nil || len(nonce) != chacha20poly1305.NonceSize {
		return nil, apperrors.Wrap(ErrSealBroken, "missing or invalid nonce")
	}
	params, err := parseKDFParams(headers)
	if err != nil {
		return nil, err
	}

	key := p.deriveKey(salt, params)
	defer zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrSealBroken
	}
	return plaintext, nil
}

func parseKDFParams(headers map[string]string) (KDFParams, error) {
	t, err1 := strconv.ParseUint(headers["KDF-Time"], 10, 32)
	m, err2 := strconv.ParseUint(headers["KDF-Memory"], 10, 32)
	th, err3 := strconv.ParseUint(headers["KDF-Threads"], 10, 8)
	if err := apperrors.Join(err1, err2, err3); err != nil {
		return KDFParams{}, apperrors.Wrap(ErrSealBroken, "invalid kdf parameters")
	}
	return KDFParams{Time: uint32(t), Memory: uint32(m), Threads: uint8(th)}, nil
}

// zero overwrites sensitive data in memory with zeros.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
