// Package domain defines the identity records managed by the Delta service.
package domain

import (
	"github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/validation"
)

// ErrIdentityNotFound indicates no identity is registered under the given id.
var ErrIdentityNotFound = errors.Wrap(errors.ErrNotFound, "identity not found")

// Identity is a registered participant.
type Identity struct {
	ID string
	// PublicEncryptionKey is the base64 PKIX DER RSA key used to protect secrets shared with this identity.
	PublicEncryptionKey string
	// PublicSigningKey is the base64 PKIX DER RSA key that verifies this identity's requests.
	PublicSigningKey string
	ExternalID       string
	Metadata         map[string]string
	// Version is the optimistic concurrency token of Metadata.
	Version int
}

// RegisterIdentityInput carries the public halves of a new identity's key pairs.
type RegisterIdentityInput struct {
	PublicEncryptionKey string
	PublicSigningKey    string
	ExternalID          *string
	Metadata            map[string]string
}

// Validate checks the registration payload.
func (in *RegisterIdentityInput) Validate() error {
	if err := validation.CheckPublicKey("public_encryption_key", in.PublicEncryptionKey); err != nil {
		return err
	}
	if err := validation.CheckPublicKey("public_signing_key", in.PublicSigningKey); err != nil {
		return err
	}
	if in.ExternalID != nil && *in.ExternalID == "" {
		return errors.Wrap(errors.ErrInvalidInput, "external_id: cannot be blank when set")
	}
	return validation.CheckMetadata("metadata", in.Metadata, false)
}

// IdentityQuery selects identities by metadata. At least one metadata entry is required.
type IdentityQuery struct {
	Metadata map[string]string
	Page     *int
	PageSize *int
}

// Validate checks the query.
func (q *IdentityQuery) Validate() error {
	if err := validation.CheckMetadata("metadata", q.Metadata, true); err != nil {
		return err
	}
	return validation.CheckPage(q.Page, q.PageSize)
}
