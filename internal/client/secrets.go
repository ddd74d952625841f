package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/allisson/delta/internal/client/dto"
	apperrors "github.com/allisson/delta/internal/errors"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
	"github.com/allisson/delta/internal/validation"
)

const (
	secretsResource = "secrets"
	metadataSegment = "metadata"
	contentSegment  = "content"
)

func checkSecretPayload(content string, encryptionDetails map[string]string) error {
	if content == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "content: cannot be blank")
	}
	return validation.CheckMetadata("encryption_details", encryptionDetails, true)
}

// CreateSecret implements APIClient.
func (c *Client) CreateSecret(
	ctx context.Context,
	requestorID, content string,
	encryptionDetails map[string]string,
) (*secretsDomain.Secret, error) {
	if err := validation.CheckID("requestor_id", requestorID); err != nil {
		return nil, err
	}
	if err := checkSecretPayload(content, encryptionDetails); err != nil {
		return nil, err
	}

	body := dto.CreateSecretRequest{Content: content, EncryptionDetails: encryptionDetails}
	return c.storeSecret(ctx, requestorID, body)
}

// ShareSecret implements APIClient.
func (c *Client) ShareSecret(
	ctx context.Context,
	requestorID, content string,
	encryptionDetails map[string]string,
	baseSecretID, rsaKeyOwnerID string,
) (*secretsDomain.Secret, error) {
	if err := validation.CheckIDs(
		"requestor_id", requestorID,
		"base_secret_id", baseSecretID,
		"rsa_key_owner_id", rsaKeyOwnerID,
	); err != nil {
		return nil, err
	}
	if err := checkSecretPayload(content, encryptionDetails); err != nil {
		return nil, err
	}

	body := dto.CreateSecretRequest{
		Content:           content,
		EncryptionDetails: encryptionDetails,
		BaseSecret:        baseSecretID,
		RSAKeyOwner:       rsaKeyOwnerID,
	}
	return c.storeSecret(ctx, requestorID, body)
}

// storeSecret posts a secret and completes the returned record from the request for
// any field the service left out.
func (c *Client) storeSecret(
	ctx context.Context,
	requestorID string,
	body dto.CreateSecretRequest,
) (*secretsDomain.Secret, error) {
	resp, err := c.do(ctx, &request{
		method:      http.MethodPost,
		segments:    []string{secretsResource},
		body:        body,
		requestorID: requestorID,
	})
	if err != nil {
		return nil, err
	}

	var out dto.SecretResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, apperrors.Wrap(apperrors.ErrMalformedResponse, "secret response has no id")
	}

	secret := out.ToDomain()
	if secret.Href == "" {
		secret.Href = c.endpoint([]string{secretsResource, secret.ID}, nil)
	}
	if secret.Content == nil {
		content := body.Content
		secret.Content = &content
	}
	if secret.EncryptionDetails == nil {
		secret.EncryptionDetails = body.EncryptionDetails
	}
	if secret.BaseSecretID == "" {
		secret.BaseSecretID = body.BaseSecret
	}
	if secret.RSAKeyOwnerID == "" {
		secret.RSAKeyOwnerID = body.RSAKeyOwner
		if secret.RSAKeyOwnerID == "" {
			secret.RSAKeyOwnerID = requestorID
		}
	}
	if secret.CreatedBy == "" {
		secret.CreatedBy = requestorID
	}
	if secret.Created.IsZero() {
		if date, err := http.ParseTime(resp.header.Get("Date")); err == nil {
			secret.Created = date.UTC()
		} else {
			secret.Created = time.Now().UTC()
		}
	}
	return secret, nil
}

// DeleteSecret implements APIClient.
func (c *Client) DeleteSecret(ctx context.Context, requestorID, secretID string) error {
	if err := validation.CheckIDs("requestor_id", requestorID, "secret_id", secretID); err != nil {
		return err
	}

	_, err := c.do(ctx, &request{
		method:      http.MethodDelete,
		segments:    []string{secretsResource, secretID},
		requestorID: requestorID,
	})
	return err
}

// GetSecret implements APIClient.
func (c *Client) GetSecret(ctx context.Context, requestorID, secretID string) (*secretsDomain.Secret, error) {
	if err := validation.CheckIDs("requestor_id", requestorID, "secret_id", secretID); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, &request{
		method:      http.MethodGet,
		segments:    []string{secretsResource, secretID},
		requestorID: requestorID,
	})
	if err != nil {
		return nil, err
	}

	var out dto.SecretResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out.ToDomain(), nil
}

// GetSecretMetadata implements APIClient.
func (c *Client) GetSecretMetadata(
	ctx context.Context,
	requestorID, secretID string,
) (*secretsDomain.SecretMetadata, error) {
	if err := validation.CheckIDs("requestor_id", requestorID, "secret_id", secretID); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, &request{
		method:      http.MethodGet,
		segments:    []string{secretsResource, secretID, metadataSegment},
		requestorID: requestorID,
	})
	if err != nil {
		return nil, err
	}

	entries := map[string]string{}
	if err := decode(resp, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = map[string]string{}
	}
	version, err := dto.ParseETag(resp.header.Get("ETag"))
	if err != nil {
		return nil, err
	}
	return &secretsDomain.SecretMetadata{Entries: entries, Version: version}, nil
}

// GetSecretContent implements APIClient.
func (c *Client) GetSecretContent(ctx context.Context, requestorID, secretID string) (string, error) {
	if err := validation.CheckIDs("requestor_id", requestorID, "secret_id", secretID); err != nil {
		return "", err
	}

	resp, err := c.do(ctx, &request{
		method:      http.MethodGet,
		segments:    []string{secretsResource, secretID, contentSegment},
		requestorID: requestorID,
		accept:      dto.ContentTypeText,
	})
	if err != nil {
		return "", err
	}
	return string(resp.body), nil
}

// UpdateSecretMetadata implements APIClient.
func (c *Client) UpdateSecretMetadata(
	ctx context.Context,
	requestorID, secretID string,
	metadata map[string]string,
	version int,
) error {
	if err := validation.CheckIDs("requestor_id", requestorID, "secret_id", secretID); err != nil {
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
		segments:    []string{secretsResource, secretID, metadataSegment},
		body:        metadata,
		requestorID: requestorID,
		ifMatch:     &version,
	})
	return err
}

// GetSecrets implements APIClient.
func (c *Client) GetSecrets(
	ctx context.Context,
	requestorID string,
	query *secretsDomain.SecretQuery,
) ([]*secretsDomain.Secret, error) {
	if err := validation.CheckID("requestor_id", requestorID); err != nil {
		return nil, err
	}
	if query == nil {
		query = &secretsDomain.SecretQuery{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, &request{
		method:      http.MethodGet,
		segments:    []string{secretsResource},
		query:       secretQueryValues(query),
		requestorID: requestorID,
	})
	if err != nil {
		return nil, err
	}

	var out []dto.SecretResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	secrets := make([]*secretsDomain.Secret, 0, len(out))
	for i := range out {
		secrets = append(secrets, out[i].ToDomain())
	}
	return secrets, nil
}

// secretQueryValues serializes a validated query. baseSecret carries either an id or,
// without one, the lookup type: false selects base secrets and true derived ones.
func secretQueryValues(query *secretsDomain.SecretQuery) url.Values {
	params := url.Values{}
	switch {
	case query.BaseSecretID != nil:
		params.Set(dto.ParamBaseSecret, *query.BaseSecretID)
	case query.LookupType == secretsDomain.LookupBase:
		params.Set(dto.ParamBaseSecret, strconv.FormatBool(false))
	case query.LookupType == secretsDomain.LookupDerived:
		params.Set(dto.ParamBaseSecret, strconv.FormatBool(true))
	}
	if query.CreatedBy != nil {
		params.Set(dto.ParamCreatedBy, *query.CreatedBy)
	}
	if query.RSAKeyOwnerID != nil {
		params.Set(dto.ParamRSAKeyOwner, *query.RSAKeyOwnerID)
	}
	addMetadata(params, query.Metadata)
	addPage(params, query.Page, query.PageSize)
	return params
}
