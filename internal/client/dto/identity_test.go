package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/allisson/delta/internal/identity/domain"
)

func TestNewRegisterIdentityRequest(t *testing.T) {
	t.Run("Success_OmitsUnsetOptionalFields", func(t *testing.T) {
		req := NewRegisterIdentityRequest(&identityDomain.RegisterIdentityInput{
			PublicEncryptionKey: "enc",
			PublicSigningKey:    "sig",
			Metadata:            map[string]string{},
		})

		body, err := json.Marshal(req)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(body, &fields))
		assert.Equal(t, map[string]any{"signingPublicKey": "sig", "cryptoPublicKey": "enc"}, fields)
	})

	t.Run("Success_AllFields", func(t *testing.T) {
		external := "ext-1"
		req := NewRegisterIdentityRequest(&identityDomain.RegisterIdentityInput{
			PublicEncryptionKey: "enc",
			PublicSigningKey:    "sig",
			ExternalID:          &external,
			Metadata:            map[string]string{"name": "Alice"},
		})

		body, err := json.Marshal(req)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"signingPublicKey":"sig","cryptoPublicKey":"enc","externalId":"ext-1","metadata":{"name":"Alice"}}`,
			string(body),
		)
	})
}

func TestIdentityResponse_ToDomain(t *testing.T) {
	var resp IdentityResponse
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id":"i1","cryptoPublicKey":"enc","externalId":"ext","version":3}`),
		&resp,
	))

	identity := resp.ToDomain()
	assert.Equal(t, "i1", identity.ID)
	assert.Equal(t, "enc", identity.PublicEncryptionKey)
	assert.Equal(t, "ext", identity.ExternalID)
	assert.Equal(t, 3, identity.Version)
	assert.NotNil(t, identity.Metadata)
	assert.Empty(t, identity.Metadata)

	back := MapIdentityToResponse(identity)
	assert.Equal(t, resp.ID, back.ID)
	assert.Equal(t, resp.Version, back.Version)
}
