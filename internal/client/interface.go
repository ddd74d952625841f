package client

import (
	"context"

	eventsDomain "github.com/allisson/delta/internal/events/domain"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
)

// APIClient is the full set of remote Delta operations. requestorID names the identity
// on whose behalf a request is signed.
type APIClient interface {
	// RegisterIdentity registers public keys and returns the server-assigned identity id.
	// It is the only unsigned operation.
	RegisterIdentity(ctx context.Context, input *identityDomain.RegisterIdentityInput) (string, error)

	// GetIdentity fetches an identity; requestorID may equal identityID.
	GetIdentity(ctx context.Context, requestorID, identityID string) (*identityDomain.Identity, error)

	// GetIdentitiesByMetadata lists identities whose metadata matches every query entry.
	GetIdentitiesByMetadata(
		ctx context.Context,
		requestorID string,
		query *identityDomain.IdentityQuery,
	) ([]*identityDomain.Identity, error)

	// UpdateIdentityMetadata replaces an identity's metadata if version is still current.
	UpdateIdentityMetadata(
		ctx context.Context,
		requestorID, identityID string,
		metadata map[string]string,
		version int,
	) error

	// CreateSecret stores a base secret owned by the requestor.
	CreateSecret(
		ctx context.Context,
		requestorID, content string,
		encryptionDetails map[string]string,
	) (*secretsDomain.Secret, error)

	// ShareSecret stores a derived secret of baseSecretID encrypted for rsaKeyOwnerID.
	ShareSecret(
		ctx context.Context,
		requestorID, content string,
		encryptionDetails map[string]string,
		baseSecretID, rsaKeyOwnerID string,
	) (*secretsDomain.Secret, error)

	// DeleteSecret removes a secret. Deleting an already deleted secret fails.
	DeleteSecret(ctx context.Context, requestorID, secretID string) error

	// GetSecret fetches a secret's descriptor.
	GetSecret(ctx context.Context, requestorID, secretID string) (*secretsDomain.Secret, error)

	// GetSecretMetadata fetches a secret's metadata and its current version.
	GetSecretMetadata(ctx context.Context, requestorID, secretID string) (*secretsDomain.SecretMetadata, error)

	// GetSecretContent fetches the opaque secret payload.
	GetSecretContent(ctx context.Context, requestorID, secretID string) (string, error)

	// UpdateSecretMetadata replaces a secret's metadata if version is still current.
	UpdateSecretMetadata(
		ctx context.Context,
		requestorID, secretID string,
		metadata map[string]string,
		version int,
	) error

	// GetSecrets lists secrets visible to the requestor. A nil query lists everything.
	GetSecrets(ctx context.Context, requestorID string, query *secretsDomain.SecretQuery) ([]*secretsDomain.Secret, error)

	// GetEvents lists audit events visible to the requestor. A nil query lists everything.
	GetEvents(ctx context.Context, requestorID string, query *eventsDomain.EventQuery) ([]*eventsDomain.Event, error)
}

var _ APIClient = (*Client)(nil)
