package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/delta/internal/errors"
)

func TestRegisterIdentityInput_Validate(t *testing.T) {
	key := "aGVsbG8="
	external := "ext-1"
	blank := ""

	tests := []struct {
		name    string
		input   RegisterIdentityInput
		wantErr bool
	}{
		{name: "keys only", input: RegisterIdentityInput{PublicEncryptionKey: key, PublicSigningKey: key}},
		{
			name: "all fields",
			input: RegisterIdentityInput{
				PublicEncryptionKey: key,
				PublicSigningKey:    key,
				ExternalID:          &external,
				Metadata:            map[string]string{"name": "Alice"},
			},
		},
		{name: "missing signing key", input: RegisterIdentityInput{PublicEncryptionKey: key}, wantErr: true},
		{name: "opaque keys", input: RegisterIdentityInput{PublicEncryptionKey: "ek1", PublicSigningKey: "sk1"}},
		{
			name:    "blank encryption key",
			input:   RegisterIdentityInput{PublicEncryptionKey: "  ", PublicSigningKey: key},
			wantErr: true,
		},
		{
			name:    "blank external id",
			input:   RegisterIdentityInput{PublicEncryptionKey: key, PublicSigningKey: key, ExternalID: &blank},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIdentityQuery_Validate(t *testing.T) {
	one, zero := 1, 0

	assert.NoError(t, (&IdentityQuery{Metadata: map[string]string{"name": "Bob"}, Page: &one}).Validate())
	assert.ErrorIs(t, (&IdentityQuery{}).Validate(), errors.ErrInvalidInput)
	assert.ErrorIs(t,
		(&IdentityQuery{Metadata: map[string]string{"name": "Bob"}, PageSize: &zero}).Validate(),
		errors.ErrInvalidInput,
	)
}
