package signer

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/keystore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	testKeysOnce sync.Once
	testKeys     *keystore.KeyPair
	testKeysErr  error
)

func sharedKeyPair(t *testing.T) *keystore.KeyPair {
	t.Helper()
	testKeysOnce.Do(func() {
		testKeys, testKeysErr = keystore.GenerateKeyPair(2048)
	})
	require.NoError(t, testKeysErr)
	return testKeys
}

func newTestStore(t *testing.T, identityID string) *keystore.MemoryStore {
	t.Helper()
	store := keystore.NewMemoryStore()
	require.NoError(t, store.StoreKeys(context.Background(), identityID, sharedKeyPair(t)))
	return store
}

var fixedTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

type failingStore struct{}

func (failingStore) PrivateSigningKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) PrivateEncryptionKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error) {
	return nil, errors.New("disk on fire")
}

// authParams splits the Authorization header into its named parameters.
func authParams(t *testing.T, value string) map[string]string {
	t.Helper()
	params, ok := strings.CutPrefix(value, Algorithm+" ")
	require.True(t, ok, "unexpected scheme in %q", value)
	out := make(map[string]string)
	for _, part := range strings.Split(params, ", ") {
		key, val, ok := strings.Cut(part, "=")
		require.True(t, ok)
		out[key] = val
	}
	return out
}

func TestSigner_Sign(t *testing.T) {
	ctx := context.Background()
	s := New(newTestStore(t, "alice"), WithClock(fixedClock))

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("User-Agent", "delta-test")
	body := []byte(`{"content":"x"}`)

	signed, err := s.Sign(ctx, "alice", http.MethodPost, "https://delta.example.com/v1/secrets", header, body)
	require.NoError(t, err)

	t.Run("Success_AddsDateAndAuthorization", func(t *testing.T) {
		assert.Equal(t, "20260314T150926Z", signed.Get(DateHeader))

		params := authParams(t, signed.Get("Authorization"))
		assert.Equal(t, "alice", params["Identity"])
		assert.Equal(t, "content-type;cvt-date;host", params["SignedHeaders"])
		assert.NotEmpty(t, params["Signature"])
	})

	t.Run("Success_SignatureVerifiesWithPublicKey", func(t *testing.T) {
		params := authParams(t, signed.Get("Authorization"))
		sig, err := base64.StdEncoding.DecodeString(params["Signature"])
		require.NoError(t, err)

		names := strings.Split(params["SignedHeaders"], ";")
		canonical, err := CanonicalRequest(
			http.MethodPost, "delta.example.com", "/v1/secrets", "", signed, names, PayloadHash(body),
		)
		require.NoError(t, err)
		digest := sha256.Sum256([]byte(StringToSign(signed.Get(DateHeader), "alice", canonical)))

		err = rsa.VerifyPSS(
			&sharedKeyPair(t).Signing.PublicKey,
			crypto.SHA256,
			digest[:],
			sig,
			&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
		)
		assert.NoError(t, err)
	})

	t.Run("Success_CallerHeaderUntouched", func(t *testing.T) {
		assert.Empty(t, header.Get("Authorization"))
		assert.Empty(t, header.Get(DateHeader))
		assert.Len(t, header, 2)
	})
}

func TestSigner_Deterministic(t *testing.T) {
	ctx := context.Background()
	s := New(newTestStore(t, "alice"), WithClock(fixedClock))
	rawURL := "https://delta.example.com/v1/secrets?createdBy=alice&page=1"

	first, err := s.Sign(ctx, "alice", http.MethodGet, rawURL, nil, nil)
	require.NoError(t, err)
	second, err := s.Sign(ctx, "alice", http.MethodGet, rawURL, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Get(DateHeader), second.Get(DateHeader))
	assert.Equal(t,
		authParams(t, first.Get("Authorization"))["SignedHeaders"],
		authParams(t, second.Get("Authorization"))["SignedHeaders"],
	)

	// PSS is randomized, so both signatures must verify rather than match.
	verifier := NewVerifier(PublicKeyResolverFunc(func(ctx context.Context, id string) (*rsa.PublicKey, error) {
		return &sharedKeyPair(t).Signing.PublicKey, nil
	}), time.Minute, WithClock(fixedClock))
	for _, signed := range []http.Header{first, second} {
		req, err := http.NewRequest(http.MethodGet, rawURL, nil)
		require.NoError(t, err)
		req.Header = signed
		id, err := verifier.Verify(req, nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", id)
	}
}

func TestSigner_Errors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "alice")

	tests := []struct {
		name       string
		signer     *Signer
		identityID string
		method     string
		rawURL     string
		wantErr    error
	}{
		{
			name:       "Error_UnknownIdentity",
			signer:     New(store),
			identityID: "bob",
			method:     http.MethodGet,
			rawURL:     "https://delta.example.com/v1/identities/bob",
			wantErr:    apperrors.ErrUnknownIdentity,
		},
		{
			name:       "Error_KeyStoreFailure",
			signer:     New(failingStore{}),
			identityID: "alice",
			method:     http.MethodGet,
			rawURL:     "https://delta.example.com/v1/identities/alice",
			wantErr:    apperrors.ErrSigning,
		},
		{
			name:       "Error_MissingMethod",
			signer:     New(store),
			identityID: "alice",
			rawURL:     "https://delta.example.com/v1/identities/alice",
			wantErr:    apperrors.ErrSigning,
		},
		{
			name:       "Error_RelativeURL",
			signer:     New(store),
			identityID: "alice",
			method:     http.MethodGet,
			rawURL:     "/v1/identities/alice",
			wantErr:    apperrors.ErrSigning,
		},
		{
			name:    "Error_MissingIdentity",
			signer:  New(store),
			method:  http.MethodGet,
			rawURL:  "https://delta.example.com/v1/identities/alice",
			wantErr: apperrors.ErrSigning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := tt.signer.Sign(ctx, tt.identityID, tt.method, tt.rawURL, nil, nil)
			assert.Nil(t, signed)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrSigning)
		})
	}

	t.Run("Error_KeyStoreFailureIsNotUnknownIdentity", func(t *testing.T) {
		_, err := New(failingStore{}).Sign(ctx, "alice", http.MethodGet, "https://delta.example.com/", nil, nil)
		assert.False(t, apperrors.Is(err, apperrors.ErrUnknownIdentity))
		assert.Contains(t, err.Error(), "disk on fire")
	})
}

func TestSignRequest(t *testing.T) {
	ctx := context.Background()
	s := New(newTestStore(t, "alice"), WithClock(fixedClock))

	req, err := http.NewRequest(http.MethodDelete, "https://delta.example.com/v1/secrets/s1", nil)
	require.NoError(t, err)

	require.NoError(t, SignRequest(ctx, s, "alice", req, nil))
	assert.True(t, strings.HasPrefix(req.Header.Get("Authorization"), Algorithm+" Identity=alice"))
	assert.Equal(t, "20260314T150926Z", req.Header.Get(DateHeader))
}
