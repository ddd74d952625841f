package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	clientMocks "github.com/allisson/delta/internal/client/mocks"
	eventsDomain "github.com/allisson/delta/internal/events/domain"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	"github.com/allisson/delta/internal/metrics"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
)

// mockClientMetrics is a mock implementation of metrics.ClientMetrics for testing.
type mockClientMetrics struct {
	mock.Mock
}

func (m *mockClientMetrics) Observe(ctx context.Context, domain, operation string, duration time.Duration, err error) {
	m.Called(ctx, domain, operation, duration, err)
}

var _ metrics.ClientMetrics = (*mockClientMetrics)(nil)

func expectObserve(m *mockClientMetrics, ctx context.Context, domain, operation string, err error) {
	m.On("Observe", ctx, domain, operation, mock.AnythingOfType("time.Duration"), err).Return().Once()
}

func TestNewAPIClientWithMetrics(t *testing.T) {
	decorator := NewAPIClientWithMetrics(clientMocks.NewMockAPIClient(t), &mockClientMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*APIClient)(nil), decorator)
}

func TestMetricsDecorator_Operations(t *testing.T) {
	ctx := context.Background()
	failure := errors.New("boom")
	details := map[string]string{"k": "v"}
	metadata := map[string]string{"name": "Bob"}

	tests := []struct {
		name      string
		domain    string
		operation string
		method    string
		args      []any
		returns   []any
		call      func(c APIClient) error
	}{
		{
			name: "RegisterIdentity", domain: "identities", operation: "identity_register",
			method: "RegisterIdentity", args: []any{ctx, mock.Anything}, returns: []any{"i1", nil},
			call: func(c APIClient) error {
				_, err := c.RegisterIdentity(ctx, &identityDomain.RegisterIdentityInput{})
				return err
			},
		},
		{
			name: "GetIdentity", domain: "identities", operation: "identity_get",
			method: "GetIdentity", args: []any{ctx, "i1", "i2"}, returns: []any{&identityDomain.Identity{}, nil},
			call: func(c APIClient) error {
				_, err := c.GetIdentity(ctx, "i1", "i2")
				return err
			},
		},
		{
			name: "GetIdentitiesByMetadata", domain: "identities", operation: "identity_list",
			method: "GetIdentitiesByMetadata", args: []any{ctx, "i1", mock.Anything},
			returns: []any{[]*identityDomain.Identity{}, nil},
			call: func(c APIClient) error {
				_, err := c.GetIdentitiesByMetadata(ctx, "i1", &identityDomain.IdentityQuery{Metadata: metadata})
				return err
			},
		},
		{
			name: "UpdateIdentityMetadata", domain: "identities", operation: "identity_update_metadata",
			method: "UpdateIdentityMetadata", args: []any{ctx, "i1", "i1", metadata, 1}, returns: []any{nil},
			call: func(c APIClient) error {
				return c.UpdateIdentityMetadata(ctx, "i1", "i1", metadata, 1)
			},
		},
		{
			name: "CreateSecret", domain: "secrets", operation: "secret_create",
			method: "CreateSecret", args: []any{ctx, "i1", "c", details}, returns: []any{&secretsDomain.Secret{}, nil},
			call: func(c APIClient) error {
				_, err := c.CreateSecret(ctx, "i1", "c", details)
				return err
			},
		},
		{
			name: "ShareSecret", domain: "secrets", operation: "secret_share",
			method: "ShareSecret", args: []any{ctx, "i1", "c", details, "s1", "i2"},
			returns: []any{&secretsDomain.Secret{}, nil},
			call: func(c APIClient) error {
				_, err := c.ShareSecret(ctx, "i1", "c", details, "s1", "i2")
				return err
			},
		},
		{
			name: "DeleteSecret", domain: "secrets", operation: "secret_delete",
			method: "DeleteSecret", args: []any{ctx, "i1", "s1"}, returns: []any{nil},
			call: func(c APIClient) error {
				return c.DeleteSecret(ctx, "i1", "s1")
			},
		},
		{
			name: "GetSecret", domain: "secrets", operation: "secret_get",
			method: "GetSecret", args: []any{ctx, "i1", "s1"}, returns: []any{&secretsDomain.Secret{}, nil},
			call: func(c APIClient) error {
				_, err := c.GetSecret(ctx, "i1", "s1")
				return err
			},
		},
		{
			name: "GetSecretMetadata", domain: "secrets", operation: "secret_get_metadata",
			method: "GetSecretMetadata", args: []any{ctx, "i1", "s1"},
			returns: []any{&secretsDomain.SecretMetadata{}, nil},
			call: func(c APIClient) error {
				_, err := c.GetSecretMetadata(ctx, "i1", "s1")
				return err
			},
		},
		{
			name: "GetSecretContent", domain: "secrets", operation: "secret_get_content",
			method: "GetSecretContent", args: []any{ctx, "i1", "s1"}, returns: []any{"c", nil},
			call: func(c APIClient) error {
				_, err := c.GetSecretContent(ctx, "i1", "s1")
				return err
			},
		},
		{
			name: "UpdateSecretMetadata", domain: "secrets", operation: "secret_update_metadata",
			method: "UpdateSecretMetadata", args: []any{ctx, "i1", "s1", metadata, 2}, returns: []any{nil},
			call: func(c APIClient) error {
				return c.UpdateSecretMetadata(ctx, "i1", "s1", metadata, 2)
			},
		},
		{
			name: "GetSecrets", domain: "secrets", operation: "secret_list",
			method: "GetSecrets", args: []any{ctx, "i1", mock.Anything}, returns: []any{[]*secretsDomain.Secret{}, nil},
			call: func(c APIClient) error {
				_, err := c.GetSecrets(ctx, "i1", nil)
				return err
			},
		},
		{
			name: "GetEvents", domain: "events", operation: "event_list",
			method: "GetEvents", args: []any{ctx, "i1", mock.Anything}, returns: []any{[]*eventsDomain.Event{}, nil},
			call: func(c APIClient) error {
				_, err := c.GetEvents(ctx, "i1", nil)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_Success", func(t *testing.T) {
			next := clientMocks.NewMockAPIClient(t)
			m := &mockClientMetrics{}
			next.On(tt.method, tt.args...).Return(tt.returns...).Once()
			expectObserve(m, ctx, tt.domain, tt.operation, nil)

			require.NoError(t, tt.call(NewAPIClientWithMetrics(next, m)))
			m.AssertExpectations(t)
		})

		t.Run(tt.name+"_Error", func(t *testing.T) {
			next := clientMocks.NewMockAPIClient(t)
			m := &mockClientMetrics{}
			returns := make([]any, len(tt.returns))
			copy(returns, tt.returns)
			returns[len(returns)-1] = failure
			if len(returns) == 2 {
				returns[0] = zeroOf(returns[0])
			}
			next.On(tt.method, tt.args...).Return(returns...).Once()
			expectObserve(m, ctx, tt.domain, tt.operation, failure)

			assert.ErrorIs(t, tt.call(NewAPIClientWithMetrics(next, m)), failure)
			m.AssertExpectations(t)
		})
	}
}

// zeroOf returns the value a failing call returns alongside its error.
func zeroOf(v any) any {
	if _, ok := v.(string); ok {
		return ""
	}
	return nil
}
