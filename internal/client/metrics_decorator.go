package client

import (
	"context"
	"time"

	eventsDomain "github.com/allisson/delta/internal/events/domain"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	"github.com/allisson/delta/internal/metrics"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
)

// Metric domains.
const (
	identitiesMetricDomain = "identities"
	secretsMetricDomain    = "secrets"
	eventsMetricDomain     = "events"
)

// apiClientWithMetrics decorates APIClient with metrics instrumentation.
type apiClientWithMetrics struct {
	next    APIClient
	metrics metrics.ClientMetrics
}

// NewAPIClientWithMetrics wraps an APIClient with metrics recording.
func NewAPIClientWithMetrics(next APIClient, m metrics.ClientMetrics) APIClient {
	return &apiClientWithMetrics{
		next:    next,
		metrics: m,
	}
}

func (a *apiClientWithMetrics) record(ctx context.Context, domain, operation string, start time.Time, err error) {
	a.metrics.Observe(ctx, domain, operation, time.Since(start), err)
}

// RegisterIdentity records metrics for identity registration.
func (a *apiClientWithMetrics) RegisterIdentity(
	ctx context.Context,
	input *identityDomain.RegisterIdentityInput,
) (string, error) {
	start := time.Now()
	id, err := a.next.RegisterIdentity(ctx, input)
	a.record(ctx, identitiesMetricDomain, "identity_register", start, err)
	return id, err
}

// GetIdentity records metrics for identity retrieval.
func (a *apiClientWithMetrics) GetIdentity(
	ctx context.Context,
	requestorID, identityID string,
) (*identityDomain.Identity, error) {
	start := time.Now()
	identity, err := a.next.GetIdentity(ctx, requestorID, identityID)
	a.record(ctx, identitiesMetricDomain, "identity_get", start, err)
	return identity, err
}

// GetIdentitiesByMetadata records metrics for identity searches.
func (a *apiClientWithMetrics) GetIdentitiesByMetadata(
	ctx context.Context,
	requestorID string,
	query *identityDomain.IdentityQuery,
) ([]*identityDomain.Identity, error) {
	start := time.Now()
	identities, err := a.next.GetIdentitiesByMetadata(ctx, requestorID, query)
	a.record(ctx, identitiesMetricDomain, "identity_list", start, err)
	return identities, err
}

// UpdateIdentityMetadata records metrics for identity metadata updates.
func (a *apiClientWithMetrics) UpdateIdentityMetadata(
	ctx context.Context,
	requestorID, identityID string,
	metadata map[string]string,
	version int,
) error {
	start := time.Now()
	err := a.next.UpdateIdentityMetadata(ctx, requestorID, identityID, metadata, version)
	a.record(ctx, identitiesMetricDomain, "identity_update_metadata", start, err)
	return err
}

// CreateSecret records metrics for base secret creation.
func (a *apiClientWithMetrics) CreateSecret(
	ctx context.Context,
	requestorID, content string,
	encryptionDetails map[string]string,
) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := a.next.CreateSecret(ctx, requestorID, content, encryptionDetails)
	a.record(ctx, secretsMetricDomain, "secret_create", start, err)
	return secret, err
}

// ShareSecret records metrics for derived secret creation.
func (a *apiClientWithMetrics) ShareSecret(
	ctx context.Context,
	requestorID, content string,
	encryptionDetails map[string]string,
	baseSecretID, rsaKeyOwnerID string,
) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := a.next.ShareSecret(ctx, requestorID, content, encryptionDetails, baseSecretID, rsaKeyOwnerID)
	a.record(ctx, secretsMetricDomain, "secret_share", start, err)
	return secret, err
}

// DeleteSecret records metrics for secret deletion.
func (a *apiClientWithMetrics) DeleteSecret(ctx context.Context, requestorID, secretID string) error {
	start := time.Now()
	err := a.next.DeleteSecret(ctx, requestorID, secretID)
	a.record(ctx, secretsMetricDomain, "secret_delete", start, err)
	return err
}

// GetSecret records metrics for secret retrieval.
func (a *apiClientWithMetrics) GetSecret(
	ctx context.Context,
	requestorID, secretID string,
) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := a.next.GetSecret(ctx, requestorID, secretID)
	a.record(ctx, secretsMetricDomain, "secret_get", start, err)
	return secret, err
}

// GetSecretMetadata records metrics for secret metadata retrieval.
func (a *apiClientWithMetrics) GetSecretMetadata(
	ctx context.Context,
	requestorID, secretID string,
) (*secretsDomain.SecretMetadata, error) {
	start := time.Now()
	metadata, err := a.next.GetSecretMetadata(ctx, requestorID, secretID)
	a.record(ctx, secretsMetricDomain, "secret_get_metadata", start, err)
	return metadata, err
}

// GetSecretContent records metrics for secret content retrieval.
func (a *apiClientWithMetrics) GetSecretContent(ctx context.Context, requestorID, secretID string) (string, error) {
	start := time.Now()
	content, err := a.next.GetSecretContent(ctx, requestorID, secretID)
	a.record(ctx, secretsMetricDomain, "secret_get_content", start, err)
	return content, err
}

// UpdateSecretMetadata records metrics for secret metadata updates.
func (a *apiClientWithMetrics) UpdateSecretMetadata(
	ctx context.Context,
	requestorID, secretID string,
	metadata map[string]string,
	version int,
) error {
	start := time.Now()
	err := a.next.UpdateSecretMetadata(ctx, requestorID, secretID, metadata, version)
	a.record(ctx, secretsMetricDomain, "secret_update_metadata", start, err)
	return err
}

// GetSecrets records metrics for secret listings.
func (a *apiClientWithMetrics) GetSecrets(
	ctx context.Context,
	requestorID string,
	query *secretsDomain.SecretQuery,
) ([]*secretsDomain.Secret, error) {
	start := time.Now()
	secrets, err := a.next.GetSecrets(ctx, requestorID, query)
	a.record(ctx, secretsMetricDomain, "secret_list", start, err)
	return secrets, err
}

// GetEvents records metrics for event listings.
func (a *apiClientWithMetrics) GetEvents(
	ctx context.Context,
	requestorID string,
	query *eventsDomain.EventQuery,
) ([]*eventsDomain.Event, error) {
	start := time.Now()
	events, err := a.next.GetEvents(ctx, requestorID, query)
	a.record(ctx, eventsMetricDomain, "event_list", start, err)
	return events, err
}
