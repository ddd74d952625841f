package signer

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/allisson/delta/internal/errors"
)

// DefaultMaxSkew bounds the distance between the signing date and the verifier's clock.
const DefaultMaxSkew = 5 * time.Minute

// PublicKeyResolver returns the public signing key registered for an identity.
type PublicKeyResolver interface {
	PublicSigningKey(ctx context.Context, identityID string) (*rsa.PublicKey, error)
}

// PublicKeyResolverFunc adapts a function to PublicKeyResolver.
type PublicKeyResolverFunc func(ctx context.Context, identityID string) (*rsa.PublicKey, error)

// PublicSigningKey implements PublicKeyResolver.
func (f PublicKeyResolverFunc) PublicSigningKey(ctx context.Context, identityID string) (*rsa.PublicKey, error) {
	return f(ctx, identityID)
}

// Verifier checks signatures produced by Signer.
type Verifier struct {
	keys    PublicKeyResolver
	maxSkew time.Duration
	now     func() time.Time
}

// NewVerifier creates a Verifier. A non-positive maxSkew selects DefaultMaxSkew.
func NewVerifier(keys PublicKeyResolver, maxSkew time.Duration, opts ...Option) *Verifier {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}
	o := applyOptions(opts)
	return &Verifier{keys: keys, maxSkew: maxSkew, now: o.now}
}

type authorization struct {
	identityID    string
	signedHeaders []string
	signature     []byte
}

func parseAuthorization(value string) (*authorization, error) {
	params, ok := strings.CutPrefix(value, Algorithm+" ")
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "unsupported authorization scheme")
	}

	auth := &authorization{}
	for part := range strings.SplitSeq(params, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "malformed authorization header")
		}
		switch key {
		case "Identity":
			auth.identityID = val
		case "SignedHeaders":
			auth.signedHeaders = strings.Split(val, ";")
		case "Signature":
			sig, err := base64.StdEncoding.DecodeString(val)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "signature is not valid base64")
			}
			auth.signature = sig
		}
	}

	if auth.identityID == "" || len(auth.signature) == 0 || !containsHost(auth.signedHeaders) {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "incomplete authorization header")
	}
	return auth, nil
}

func containsHost(names []string) bool {
	for _, name := range names {
		if name == "host" {
			return true
		}
	}
	return false
}

// Verify authenticates r, whose body has already been read into body, and returns the
// identity that signed it. Failures match apperrors.ErrUnauthorized.
func (v *Verifier) Verify(r *http.Request, body []byte) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "missing authorization header")
	}
	auth, err := parseAuthorization(header)
	if err != nil {
		return "", err
	}

	date := r.Header.Get(DateHeader)
	signedAt, err := time.Parse(DateFormat, date)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "missing or malformed signing date")
	}
	if skew := v.now().Sub(signedAt); skew > v.maxSkew || skew < -v.maxSkew {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "signing date outside allowed skew")
	}

	pub, err := v.keys.PublicSigningKey(r.Context(), auth.identityID)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrUnauthorized, "unknown identity %s", auth.identityID)
	}

	canonical, err := CanonicalRequest(
		r.Method, r.Host, r.URL.EscapedPath(), r.URL.RawQuery, r.Header, auth.signedHeaders, PayloadHash(body),
	)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, err.Error())
	}

	digest := sha256.Sum256([]byte(StringToSign(date, auth.identityID, canonical)))
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], auth.signature, opts); err != nil {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "signature mismatch")
	}
	return auth.identityID, nil
}
