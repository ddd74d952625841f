package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/allisson/delta/internal/client/dto"
	apperrors "github.com/allisson/delta/internal/errors"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	"github.com/allisson/delta/internal/validation"
)

const identitiesResource = "identities"

// RegisterIdentity implements APIClient.
func (c *Client) RegisterIdentity(ctx context.Context, input *identityDomain.RegisterIdentityInput) (string, error) {
	if input == nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "registration input is required")
	}
	if err := input.Validate(); err != nil {
		return "", err
	}

	resp, err := c.do(ctx, &request{
		method:   http.MethodPost,
		segments: []string{identitiesResource},
		body:     dto.NewRegisterIdentityRequest(input),
	})
	if err != nil {
		return "", err
	}

	var out dto.RegisterIdentityResponse
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	if out.IdentityID == "" {
		return "", apperrors.Wrap(apperrors.ErrMalformedResponse, "registration response has no identity id")
	}
	return out.IdentityID, nil
}

// GetIdentity implements APIClient.
func (c *Client) GetIdentity(ctx context.Context, requestorID, identityID string) (*identityDomain.Identity, error) {
	if err := validation.CheckIDs("requestor_id", requestorID, "identity_id", identityID); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, &request{
		method:      http.MethodGet,
		segments:    []string{identitiesResource, identityID},
		requestorID: requestorID,
	})
	if err != nil {
		return nil, err
	}

	var out dto.IdentityResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	identity := out.ToDomain()
	if identity.Version == 0 {
		if etag := resp.header.Get("ETag"); etag != "" {
			if identity.Version, err = dto.ParseETag(etag); err != nil {
				return nil, err
			}
		}
	}
	return identity, nil
}

// GetIdentitiesByMetadata implements APIClient.
func (c *Client) GetIdentitiesByMetadata(
	ctx context.Context,
	requestorID string,
	query *identityDomain.IdentityQuery,
) ([]*identityDomain.Identity, error) {
	if err := validation.CheckID("requestor_id", requestorID); err != nil {
		return nil, err
	}
	if query == nil {
		query = &identityDomain.IdentityQuery{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	addMetadata(params, query.Metadata)
	addPage(params, query.Page, query.PageSize)

	resp, err := c.do(ctx, &request{
		method:      http.MethodGet,
		segments:    []string{identitiesResource},
		query:       params,
		requestorID: requestorID,
	})
	if err != nil {
		return nil, err
	}

	var out []dto.IdentityResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	identities := make([]*identityDomain.Identity, 0, len(out))
	for i := range out {
		identities = append(identities, out[i].ToDomain())
	}
	return identities, nil
}

// UpdateIdentityMetadata implements APIClient.
func (c *Client) UpdateIdentityMetadata(
	ctx context.Context,
	requestorID, identityID string,
	metadata map[string]string,
	version int,
) error {
	if err := validation.CheckIDs("requestor_id", requestorID, "identity_id", identityID); err != nil {
		return err
	}
	if err := validation.CheckMetadata("metadata", metadata, false); err != nil {
		return err
	}
	if err := checkVersion(version); err != nil {
		return err
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	_, err := c.do(ctx, &request{
		method:      http.MethodPut,
		segments:    []string{identitiesResource, identityID},
		body:        dto.UpdateIdentityRequest{Metadata: metadata},
		requestorID: requestorID,
		ifMatch:     &version,
	})
	return err
}
