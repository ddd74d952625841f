package dto

import (
	identityDomain "github.com/allisson/delta/internal/identity/domain"
)

// RegisterIdentityRequest is the body of POST /identities. Unset optional fields are
// omitted rather than sent as null.
type RegisterIdentityRequest struct {
	SigningPublicKey string            `json:"signingPublicKey"`
	CryptoPublicKey  string            `json:"cryptoPublicKey"`
	ExternalID       *string           `json:"externalId,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// NewRegisterIdentityRequest maps a registration input to its wire form.
func NewRegisterIdentityRequest(in *identityDomain.RegisterIdentityInput) RegisterIdentityRequest {
	req := RegisterIdentityRequest{
		SigningPublicKey: in.PublicSigningKey,
		CryptoPublicKey:  in.PublicEncryptionKey,
		ExternalID:       in.ExternalID,
	}
	if len(in.Metadata) > 0 {
		req.Metadata = in.Metadata
	}
	return req
}

// RegisterIdentityResponse is returned by POST /identities.
type RegisterIdentityResponse struct {
	IdentityID string `json:"identityId"`
}

// IdentityResponse is the representation of an identity.
type IdentityResponse struct {
	ID               string            `json:"id"`
	CryptoPublicKey  string            `json:"cryptoPublicKey"`
	SigningPublicKey string            `json:"signingPublicKey,omitempty"`
	ExternalID       string            `json:"externalId,omitempty"`
	Metadata         map[string]string `json:"metadata"`
	Version          int               `json:"version"`
}

// ToDomain converts the response to a domain identity.
func (r *IdentityResponse) ToDomain() *identityDomain.Identity {
	return &identityDomain.Identity{
		ID:                  r.ID,
		PublicEncryptionKey: r.CryptoPublicKey,
		PublicSigningKey:    r.SigningPublicKey,
		ExternalID:          r.ExternalID,
		Metadata:            nonNil(r.Metadata),
		Version:             r.Version,
	}
}

// MapIdentityToResponse converts a domain identity to its wire form.
func MapIdentityToResponse(identity *identityDomain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:               identity.ID,
		CryptoPublicKey:  identity.PublicEncryptionKey,
		SigningPublicKey: identity.PublicSigningKey,
		ExternalID:       identity.ExternalID,
		Metadata:         nonNil(identity.Metadata),
		Version:          identity.Version,
	}
}

// UpdateIdentityRequest is the body of PUT /identities/{id}.
type UpdateIdentityRequest struct {
	Metadata map[string]string `json:"metadata"`
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
