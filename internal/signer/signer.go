// Package signer authenticates requests to the Delta service. Every request carries an
// RSA-PSS signature over a canonical form of its method, path, query, headers and body,
// made with the private signing key of the requesting identity.
package signer

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/keystore"
)

const (
	// Algorithm names the signature scheme in the Authorization header.
	Algorithm = "CVT1-RSA-PSS-SHA256"
	// DateHeader carries the signing time.
	DateHeader = "Cvt-Date"
	// DateFormat is the layout of DateHeader, always UTC.
	DateFormat = "20060102T150405Z"
)

// RequestSigner produces the authentication headers of an outgoing request.
type RequestSigner interface {
	// Sign returns a copy of header with the date and Authorization headers added.
	// The caller's header map is never modified.
	Sign(ctx context.Context, identityID, method, rawURL string, header http.Header, body []byte) (http.Header, error)
}

type options struct {
	now func() time.Time
}

// Option configures a Signer or a Verifier.
type Option func(*options)

// WithClock replaces time.Now. Fixed clocks give reproducible canonical requests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Signer signs requests with keys resolved from a KeyStore. It holds no per-request
// state and is safe for concurrent use when the key store is.
type Signer struct {
	keys keystore.KeyStore
	now  func() time.Time
}

// New creates a Signer backed by keys.
func New(keys keystore.KeyStore, opts ...Option) *Signer {
	o := applyOptions(opts)
	return &Signer{keys: keys, now: o.now}
}

// Sign implements RequestSigner.
func (s *Signer) Sign(
	ctx context.Context,
	identityID, method, rawURL string,
	header http.Header,
	body []byte,
) (http.Header, error) {
	if identityID == "" {
		return nil, apperrors.Wrap(apperrors.ErrSigning, "identity id is required")
	}
	if method == "" || rawURL == "" {
		return nil, apperrors.Wrap(apperrors.ErrSigning, "method and url are required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, apperrors.Wrapf(apperrors.ErrSigning, "invalid request url %q", rawURL)
	}

	key, err := s.keys.PrivateSigningKey(ctx, identityID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrapf(apperrors.ErrUnknownIdentity, "identity %s", identityID)
		}
		return nil, fmt.Errorf("%w: loading key for identity %s: %w", apperrors.ErrSigning, identityID, err)
	}

	signed := header.Clone()
	if signed == nil {
		signed = make(http.Header)
	}
	signed.Del("Authorization")
	date := s.now().UTC().Format(DateFormat)
	signed.Set(DateHeader, date)

	names := SignedHeaderNames(signed)
	canonical, err := CanonicalRequest(method, u.Host, u.EscapedPath(), u.RawQuery, signed, names, PayloadHash(body))
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256([]byte(StringToSign(date, identityID, canonical)))
	signature, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSigning, err)
	}

	signed.Set("Authorization", fmt.Sprintf(
		"%s Identity=%s, SignedHeaders=%s, Signature=%s",
		Algorithm,
		identityID,
		strings.Join(names, ";"),
		base64.StdEncoding.EncodeToString(signature),
	))
	return signed, nil
}

// SignRequest signs req in place on behalf of identityID. body must be the exact bytes
// req will send.
func SignRequest(ctx context.Context, s RequestSigner, identityID string, req *http.Request, body []byte) error {
	signed, err := s.Sign(ctx, identityID, req.Method, req.URL.String(), req.Header, body)
	if err != nil {
		return err
	}
	req.Header = signed
	return nil
}
