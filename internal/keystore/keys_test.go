package keystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/delta/internal/errors"
)

func TestGenerateKeyPair(t *testing.T) {
	keys := sharedKeyPair(t)

	assert.NotNil(t, keys.Signing)
	assert.NotNil(t, keys.Encryption)
	assert.Equal(t, 2048, keys.Signing.N.BitLen())
	assert.False(t, keys.Signing.Equal(keys.Encryption), "signing and encryption keys must differ")
}

func TestEncodeDecodePublicKey(t *testing.T) {
	keys := sharedKeyPair(t)

	encoded, err := EncodePublicKey(&keys.Signing.PublicKey)
	require.NoError(t, err)

	decoded, err := DecodePublicKey(encoded)
	require.NoError(t, err)
	assert.True(t, keys.Signing.PublicKey.Equal(decoded))
}

func TestDecodePublicKey_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not base64", input: "%%%"},
		{name: "not der", input: "aGVsbG8="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePublicKey(tt.input)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestPrivateKeyRoundTrip(t *testing.T) {
	keys := sharedKeyPair(t)

	der, err := marshalPrivateKey(keys.Encryption)
	require.NoError(t, err)

	parsed, err := parsePrivateKey(der)
	require.NoError(t, err)
	assert.True(t, keys.Encryption.Equal(parsed))
}
