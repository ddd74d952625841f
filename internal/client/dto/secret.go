package dto

import (
	"time"

	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
)

// CreateSecretRequest is the body of POST /secrets. BaseSecret and RSAKeyOwner are set
// only when sharing.
type CreateSecretRequest struct {
	Content           string            `json:"content"`
	EncryptionDetails map[string]string `json:"encryptionDetails"`
	BaseSecret        string            `json:"baseSecret,omitempty"`
	RSAKeyOwner       string            `json:"rsaKeyOwner,omitempty"`
}

// SecretResponse is the representation of a secret. Creation responses may carry only
// the id and href.
type SecretResponse struct {
	ID                string            `json:"id"`
	Href              string            `json:"href,omitempty"`
	Content           *string           `json:"content,omitempty"`
	EncryptionDetails map[string]string `json:"encryptionDetails,omitempty"`
	BaseSecret        string            `json:"baseSecret,omitempty"`
	RSAKeyOwner       string            `json:"rsaKeyOwner,omitempty"`
	CreatedBy         string            `json:"createdBy,omitempty"`
	Created           *time.Time        `json:"created,omitempty"`
}

// ToDomain converts the response to a domain secret.
func (r *SecretResponse) ToDomain() *secretsDomain.Secret {
	secret := &secretsDomain.Secret{
		ID:                r.ID,
		Href:              r.Href,
		Content:           r.Content,
		EncryptionDetails: r.EncryptionDetails,
		BaseSecretID:      r.BaseSecret,
		RSAKeyOwnerID:     r.RSAKeyOwner,
		CreatedBy:         r.CreatedBy,
	}
	if r.Created != nil {
		secret.Created = r.Created.UTC()
	}
	return secret
}

// MapSecretToResponse converts a domain secret to its wire form.
func MapSecretToResponse(secret *secretsDomain.Secret) SecretResponse {
	created := secret.Created
	return SecretResponse{
		ID:                secret.ID,
		Href:              secret.Href,
		Content:           secret.Content,
		EncryptionDetails: secret.EncryptionDetails,
		BaseSecret:        secret.BaseSecretID,
		RSAKeyOwner:       secret.RSAKeyOwnerID,
		CreatedBy:         secret.CreatedBy,
		Created:           &created,
	}
}
