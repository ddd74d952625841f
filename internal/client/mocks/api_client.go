// Package mocks provides mock implementations of the Delta API client for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	eventsDomain "github.com/allisson/delta/internal/events/domain"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
)

// MockAPIClient is a mock implementation of client.APIClient.
type MockAPIClient struct {
	mock.Mock
}

// NewMockAPIClient creates a MockAPIClient whose expectations are asserted on cleanup.
func NewMockAPIClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAPIClient {
	m := &MockAPIClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// RegisterIdentity mocks the RegisterIdentity method.
func (m *MockAPIClient) RegisterIdentity(
	ctx context.Context,
	input *identityDomain.RegisterIdentityInput,
) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// GetIdentity mocks the GetIdentity method.
func (m *MockAPIClient) GetIdentity(
	ctx context.Context,
	requestorID, identityID string,
) (*identityDomain.Identity, error) {
	args := m.Called(ctx, requestorID, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Identity), args.Error(1)
}

// GetIdentitiesByMetadata mocks the GetIdentitiesByMetadata method.
func (m *MockAPIClient) GetIdentitiesByMetadata(
	ctx context.Context,
	requestorID string,
	query *identityDomain.IdentityQuery,
) ([]*identityDomain.Identity, error) {
	args := m.Called(ctx, requestorID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.Identity), args.Error(1)
}

// UpdateIdentityMetadata mocks the UpdateIdentityMetadata method.
func (m *MockAPIClient) UpdateIdentityMetadata(
	ctx context.Context,
	requestorID, identityID string,
	metadata map[string]string,
	version int,
) error {
	args := m.Called(ctx, requestorID, identityID, metadata, version)
	return args.Error(0)
}

// CreateSecret mocks the CreateSecret method.
func (m *MockAPIClient) CreateSecret(
	ctx context.Context,
	requestorID, content string,
	encryptionDetails map[string]string,
) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, requestorID, content, encryptionDetails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// ShareSecret mocks the ShareSecret method.
func (m *MockAPIClient) ShareSecret(
	ctx context.Context,
	requestorID, content string,
	encryptionDetails map[string]string,
	baseSecretID, rsaKeyOwnerID string,
) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, requestorID, content, encryptionDetails, baseSecretID, rsaKeyOwnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// DeleteSecret mocks the DeleteSecret method.
func (m *MockAPIClient) DeleteSecret(ctx context.Context, requestorID, secretID string) error {
	args := m.Called(ctx, requestorID, secretID)
	return args.Error(0)
}

// GetSecret mocks the GetSecret method.
func (m *MockAPIClient) GetSecret(
	ctx context.Context,
	requestorID, secretID string,
) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, requestorID, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

// GetSecretMetadata mocks the GetSecretMetadata method.
func (m *MockAPIClient) GetSecretMetadata(
	ctx context.Context,
	requestorID, secretID string,
) (*secretsDomain.SecretMetadata, error) {
	args := m.Called(ctx, requestorID, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.SecretMetadata), args.Error(1)
}

// GetSecretContent mocks the GetSecretContent method.
func (m *MockAPIClient) GetSecretContent(ctx context.Context, requestorID, secretID string) (string, error) {
	args := m.Called(ctx, requestorID, secretID)
	return args.String(0), args.Error(1)
}

// UpdateSecretMetadata mocks the UpdateSecretMetadata method.
func (m *MockAPIClient) UpdateSecretMetadata(
	ctx context.Context,
	requestorID, secretID string,
	metadata map[string]string,
	version int,
) error {
	args := m.Called(ctx, requestorID, secretID, metadata, version)
	return args.Error(0)
}

// GetSecrets mocks the GetSecrets method.
func (m *MockAPIClient) GetSecrets(
	ctx context.Context,
	requestorID string,
	query *secretsDomain.SecretQuery,
) ([]*secretsDomain.Secret, error) {
	args := m.Called(ctx, requestorID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretsDomain.Secret), args.Error(1)
}

// GetEvents mocks the GetEvents method.
func (m *MockAPIClient) GetEvents(
	ctx context.Context,
	requestorID string,
	query *eventsDomain.EventQuery,
) ([]*eventsDomain.Event, error) {
	args := m.Called(ctx, requestorID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*eventsDomain.Event), args.Error(1)
}
