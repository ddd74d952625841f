package keystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/delta/internal/errors"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	keys := sharedKeyPair(t)

	t.Run("Success_StoreAndLoad", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.StoreKeys(ctx, "i1", keys))

		signing, err := store.PrivateSigningKey(ctx, "i1")
		require.NoError(t, err)
		assert.True(t, keys.Signing.Equal(signing))

		encryption, err := store.PrivateEncryptionKey(ctx, "i1")
		require.NoError(t, err)
		assert.True(t, keys.Encryption.Equal(encryption))
	})

	t.Run("Error_UnknownIdentity", func(t *testing.T) {
		store := NewMemoryStore()

		_, err := store.PrivateSigningKey(ctx, "missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Error_IncompleteKeyPair", func(t *testing.T) {
		store := NewMemoryStore()

		err := store.StoreKeys(ctx, "i1", &KeyPair{Signing: keys.Signing})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
