package signer

import (
	"bytes"
	"context"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/delta/internal/errors"
)

func newTestVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	resolver := PublicKeyResolverFunc(func(ctx context.Context, id string) (*rsa.PublicKey, error) {
		if id != "alice" {
			return nil, apperrors.ErrNotFound
		}
		return &sharedKeyPair(t).Signing.PublicKey, nil
	})
	return NewVerifier(resolver, time.Minute, WithClock(func() time.Time { return now }))
}

// signedRequest builds a server-side request carrying a signature made by alice.
func signedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	s := New(newTestStore(t, "alice"), WithClock(fixedClock))

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("X-Request-Id", "req-1")
	signed, err := s.Sign(context.Background(), "alice", method, target, header, body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header = signed
	return req
}

func TestVerifier_Verify(t *testing.T) {
	body := []byte(`{"metadata":{"k":"v"}}`)
	target := "http://delta.example.com/v1/identities/alice?page=1"

	t.Run("Success", func(t *testing.T) {
		req := signedRequest(t, http.MethodPut, target, body)

		id, err := newTestVerifier(t, fixedTime.Add(30*time.Second)).Verify(req, body)
		require.NoError(t, err)
		assert.Equal(t, "alice", id)
	})

	t.Run("Success_UnsignedTransportHeadersIgnored", func(t *testing.T) {
		req := signedRequest(t, http.MethodPut, target, body)
		req.Header.Set("User-Agent", "Go-http-client/1.1")
		req.Header.Set("Accept-Encoding", "gzip")

		_, err := newTestVerifier(t, fixedTime).Verify(req, body)
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		tamper func(req *http.Request) ([]byte, time.Time)
	}{
		{
			name: "Error_TamperedBody",
			tamper: func(req *http.Request) ([]byte, time.Time) {
				return []byte(`{"metadata":{"k":"w"}}`), fixedTime
			},
		},
		{
			name: "Error_TamperedSignedHeader",
			tamper: func(req *http.Request) ([]byte, time.Time) {
				req.Header.Set("X-Request-Id", "req-2")
				return body, fixedTime
			},
		},
		{
			name: "Error_TamperedQuery",
			tamper: func(req *http.Request) ([]byte, time.Time) {
				req.URL.RawQuery = "page=2"
				return body, fixedTime
			},
		},
		{
			name: "Error_ClockSkew",
			tamper: func(req *http.Request) ([]byte, time.Time) {
				return body, fixedTime.Add(2 * time.Minute)
			},
		},
		{
			name: "Error_MissingAuthorization",
			tamper: func(req *http.Request) ([]byte, time.Time) {
				req.Header.Del("Authorization")
				return body, fixedTime
			},
		},
		{
			name: "Error_WrongScheme",
			tamper: func(req *http.Request) ([]byte, time.Time) {
				req.Header.Set("Authorization", "Bearer token")
				return body, fixedTime
			},
		},
		{
			name: "Error_UnknownIdentity",
			tamper: func(req *http.Request) ([]byte, time.Time) {
				req.Header.Set("Authorization", Algorithm+" Identity=bob, SignedHeaders=host, Signature=AAAA")
				return body, fixedTime
			},
		},
		{
			name: "Error_MissingDate",
			tamper: func(req *http.Request) ([]byte, time.Time) {
				req.Header.Del(DateHeader)
				return body, fixedTime
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := signedRequest(t, http.MethodPut, target, body)
			sentBody, now := tt.tamper(req)

			id, err := newTestVerifier(t, now).Verify(req, sentBody)
			assert.Empty(t, id)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}
}

func TestNewVerifier_DefaultSkew(t *testing.T) {
	v := NewVerifier(nil, 0)
	assert.Equal(t, DefaultMaxSkew, v.maxSkew)
}
