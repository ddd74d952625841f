package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventsDomain "github.com/allisson/delta/internal/events/domain"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
)

func TestCreateSecretRequest_BaseOmitsShareFields(t *testing.T) {
	body, err := json.Marshal(CreateSecretRequest{
		Content:           "c2VjcmV0",
		EncryptionDetails: map[string]string{"iv": "abc"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"c2VjcmV0","encryptionDetails":{"iv":"abc"}}`, string(body))
}

func TestSecretResponse_RoundTrip(t *testing.T) {
	content := "c2VjcmV0"
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	secret := &secretsDomain.Secret{
		ID:                "s2",
		Href:              "https://delta.example.com/v1/secrets/s2",
		Content:           &content,
		EncryptionDetails: map[string]string{"iv": "abc"},
		BaseSecretID:      "s1",
		RSAKeyOwnerID:     "bob",
		CreatedBy:         "alice",
		Created:           created,
	}

	resp := MapSecretToResponse(secret)
	assert.Equal(t, secret, resp.ToDomain())
}

func TestSecretResponse_PartialCreateResponse(t *testing.T) {
	var resp SecretResponse
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s1","href":"/v1/secrets/s1"}`), &resp))

	secret := resp.ToDomain()
	assert.Equal(t, "s1", secret.ID)
	assert.Nil(t, secret.Content)
	assert.True(t, secret.Created.IsZero())
	assert.True(t, secret.IsBase())
}

func TestEventResponse_RoundTrip(t *testing.T) {
	event := &eventsDomain.Event{
		ID:        "e1",
		Type:      eventsDomain.TypeSecretShared,
		Purpose:   eventsDomain.AuditPurpose,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Host:      "delta.example.com",
		SourceIP:  "10.0.0.1",
		Details: eventsDomain.EventDetails{
			SecretID:      "s2",
			BaseSecretID:  "s1",
			RequestorID:   "alice",
			RSAKeyOwnerID: "bob",
			SecretOwnerID: "alice",
		},
	}

	resp := MapEventToResponse(event)
	body, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded EventResponse
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, event, decoded.ToDomain())
}
