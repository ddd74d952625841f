// Package delta offers identity-centric access to the Delta service. A Client creates
// identities, generating and storing their private keys locally; an Identity handle
// performs every operation signed as itself.
package delta

import (
	"context"
	"fmt"

	"github.com/allisson/delta/internal/client"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	"github.com/allisson/delta/internal/keystore"
	"github.com/allisson/delta/internal/validation"
)

// Client creates and loads identity handles.
type Client struct {
	api     client.APIClient
	keys    keystore.Writer
	keyBits int
}

// Option configures a Client.
type Option func(*Client)

// WithKeyBits sets the RSA modulus size of generated keys.
func WithKeyBits(bits int) Option {
	return func(c *Client) {
		c.keyBits = bits
	}
}

// NewClient creates a Client. keys receives the private keys of created identities and
// must be the store the api's signer reads from.
func NewClient(api client.APIClient, keys keystore.Writer, opts ...Option) *Client {
	c := &Client{api: api, keys: keys, keyBits: keystore.DefaultKeyBits}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateIdentity generates a signing and an encryption key pair, registers the public
// halves and stores the private halves under the server-assigned id.
func (c *Client) CreateIdentity(
	ctx context.Context,
	externalID *string,
	metadata map[string]string,
) (*Identity, error) {
	pair, err := keystore.GenerateKeyPair(c.keyBits)
	if err != nil {
		return nil, err
	}
	encryptionKey, err := keystore.EncodePublicKey(&pair.Encryption.PublicKey)
	if err != nil {
		return nil, err
	}
	signingKey, err := keystore.EncodePublicKey(&pair.Signing.PublicKey)
	if err != nil {
		return nil, err
	}

	id, err := c.api.RegisterIdentity(ctx, &identityDomain.RegisterIdentityInput{
		PublicEncryptionKey: encryptionKey,
		PublicSigningKey:    signingKey,
		ExternalID:          externalID,
		Metadata:            metadata,
	})
	if err != nil {
		return nil, err
	}
	if err := c.keys.StoreKeys(ctx, id, pair); err != nil {
		return nil, fmt.Errorf("identity %s was registered but its keys could not be stored: %w", id, err)
	}
	return c.Identity(ctx, id)
}

// Identity loads the handle of an identity whose keys are in the local key store.
func (c *Client) Identity(ctx context.Context, id string) (*Identity, error) {
	if err := validation.CheckID("identity_id", id); err != nil {
		return nil, err
	}
	data, err := c.api.GetIdentity(ctx, id, id)
	if err != nil {
		return nil, err
	}
	return &Identity{Identity: *data, api: c.api}, nil
}
