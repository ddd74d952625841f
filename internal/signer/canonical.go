package signer

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"slices"
	"strings"

	apperrors "github.com/allisson/delta/internal/errors"
)

// EmptyPayloadHash is the hex SHA-256 of an empty body.
const EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Headers owned by the transport. They may be rewritten in flight and are never signed.
var unsignedHeaders = map[string]struct{}{
	"authorization":     {},
	"user-agent":        {},
	"content-length":    {},
	"accept-encoding":   {},
	"connection":        {},
	"transfer-encoding": {},
}

// PayloadHash returns the lower-hex SHA-256 of body.
func PayloadHash(body []byte) string {
	if len(body) == 0 {
		return EmptyPayloadHash
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// SignedHeaderNames returns the sorted, lower-cased header names a signature covers.
// host is always included.
func SignedHeaderNames(header http.Header) []string {
	names := []string{"host"}
	for name := range header {
		lower := strings.ToLower(name)
		if lower == "host" {
			continue
		}
		if _, skip := unsignedHeaders[lower]; skip {
			continue
		}
		names = append(names, lower)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// CanonicalRequest builds the newline separated canonical form of a request:
// method, path, query, one line per signed header, the signed header list and the
// payload hash. host is taken from the URL rather than the header map.
func CanonicalRequest(
	method, host, escapedPath, rawQuery string,
	header http.Header,
	signedHeaders []string,
	payloadHash string,
) (string, error) {
	if method == "" {
		return "", apperrors.Wrap(apperrors.ErrSigning, "method is required")
	}
	if escapedPath == "" {
		escapedPath = "/"
	}
	query, err := canonicalQuery(rawQuery)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('\n')
	b.WriteString(escapedPath)
	b.WriteByte('\n')
	b.WriteString(query)
	b.WriteByte('\n')
	for _, name := range signedHeaders {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(canonicalHeaderValue(name, host, header))
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(signedHeaders, ";"))
	b.WriteByte('\n')
	b.WriteString(payloadHash)
	return b.String(), nil
}

// StringToSign binds the canonical request to the signing date and identity.
func StringToSign(date, identityID, canonicalRequest string) string {
	sum := sha256.Sum256([]byte(canonicalRequest))
	return strings.Join([]string{Algorithm, date, identityID, hex.EncodeToString(sum[:])}, "\n")
}

func canonicalQuery(rawQuery string) (string, error) {
	if rawQuery == "" {
		return "", nil
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrSigning, "invalid query string: %v", err)
	}

	pairs := make([][2]string, 0, len(values))
	for key, vals := range values {
		for _, val := range vals {
			pairs = append(pairs, [2]string{escape(key), escape(val)})
		}
	}
	slices.SortFunc(pairs, func(a, b [2]string) int {
		if c := strings.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return strings.Compare(a[1], b[1])
	})

	encoded := make([]string, len(pairs))
	for i, pair := range pairs {
		encoded[i] = pair[0] + "=" + pair[1]
	}
	return strings.Join(encoded, "&"), nil
}

// escape percent-encodes s per RFC 3986, leaving only unreserved characters.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func canonicalHeaderValue(name, host string, header http.Header) string {
	if name == "host" {
		return strings.ToLower(host)
	}
	values := header.Values(name)
	normalized := make([]string, len(values))
	for i, v := range values {
		normalized[i] = strings.Join(strings.Fields(v), " ")
	}
	slices.Sort(normalized)
	return strings.Join(normalized, ",")
}
