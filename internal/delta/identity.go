package delta

import (
	"context"
	"fmt"

	"github.com/allisson/delta/internal/client"
	eventsDomain "github.com/allisson/delta/internal/events/domain"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
)

// Identity is a local identity. Every call is signed with its private signing key.
// An Identity caches its metadata version and is not safe for concurrent use.
type Identity struct {
	identityDomain.Identity
	api client.APIClient
}

// RetrievedSecret bundles a secret with its content and metadata.
type RetrievedSecret struct {
	*secretsDomain.Secret
	Metadata *secretsDomain.SecretMetadata
}

// String implements fmt.Stringer.
func (i *Identity) String() string {
	return fmt.Sprintf("Identity(id=%s)", i.ID)
}

// GetIdentity fetches another identity, or this one when id is empty.
func (i *Identity) GetIdentity(ctx context.Context, id string) (*identityDomain.Identity, error) {
	if id == "" {
		id = i.ID
	}
	return i.api.GetIdentity(ctx, i.ID, id)
}

// GetIdentitiesByMetadata searches identities by metadata.
func (i *Identity) GetIdentitiesByMetadata(
	ctx context.Context,
	query *identityDomain.IdentityQuery,
) ([]*identityDomain.Identity, error) {
	return i.api.GetIdentitiesByMetadata(ctx, i.ID, query)
}

// UpdateMetadata replaces this identity's metadata using the cached version and
// refreshes the handle on success. A stale handle fails with ErrVersionConflict and
// must be reloaded with Refresh.
func (i *Identity) UpdateMetadata(ctx context.Context, metadata map[string]string) error {
	if err := i.api.UpdateIdentityMetadata(ctx, i.ID, i.ID, metadata, i.Version); err != nil {
		return err
	}
	return i.Refresh(ctx)
}

// Refresh reloads the identity from the service.
func (i *Identity) Refresh(ctx context.Context) error {
	data, err := i.api.GetIdentity(ctx, i.ID, i.ID)
	if err != nil {
		return err
	}
	i.Identity = *data
	return nil
}

// CreateSecret stores a base secret owned by this identity.
func (i *Identity) CreateSecret(
	ctx context.Context,
	content string,
	encryptionDetails map[string]string,
) (*secretsDomain.Secret, error) {
	return i.api.CreateSecret(ctx, i.ID, content, encryptionDetails)
}

// ShareSecret stores a copy of baseSecretID re-encrypted for rsaKeyOwnerID.
func (i *Identity) ShareSecret(
	ctx context.Context,
	baseSecretID, rsaKeyOwnerID, content string,
	encryptionDetails map[string]string,
) (*secretsDomain.Secret, error) {
	return i.api.ShareSecret(ctx, i.ID, content, encryptionDetails, baseSecretID, rsaKeyOwnerID)
}

// RetrieveSecret fetches a secret together with its content and metadata.
func (i *Identity) RetrieveSecret(ctx context.Context, secretID string) (*RetrievedSecret, error) {
	secret, err := i.api.GetSecret(ctx, i.ID, secretID)
	if err != nil {
		return nil, err
	}
	content, err := i.api.GetSecretContent(ctx, i.ID, secretID)
	if err != nil {
		return nil, err
	}
	metadata, err := i.api.GetSecretMetadata(ctx, i.ID, secretID)
	if err != nil {
		return nil, err
	}
	secret.Content = &content
	return &RetrievedSecret{Secret: secret, Metadata: metadata}, nil
}

// UpdateSecretMetadata replaces a secret's metadata if version is still current.
func (i *Identity) UpdateSecretMetadata(
	ctx context.Context,
	secretID string,
	metadata map[string]string,
	version int,
) error {
	return i.api.UpdateSecretMetadata(ctx, i.ID, secretID, metadata, version)
}

// DeleteSecret removes a secret created by this identity.
func (i *Identity) DeleteSecret(ctx context.Context, secretID string) error {
	return i.api.DeleteSecret(ctx, i.ID, secretID)
}

// GetSecrets lists secrets visible to this identity.
func (i *Identity) GetSecrets(ctx context.Context, query *secretsDomain.SecretQuery) ([]*secretsDomain.Secret, error) {
	return i.api.GetSecrets(ctx, i.ID, query)
}

// GetEvents lists audit events visible to this identity.
func (i *Identity) GetEvents(ctx context.Context, query *eventsDomain.EventQuery) ([]*eventsDomain.Event, error) {
	return i.api.GetEvents(ctx, i.ID, query)
}
