// Package dto defines the JSON shapes and query vocabulary of the Delta HTTP API.
// The client and the dev server share these types so both ends agree on the wire.
package dto

import (
	"strconv"
	"strings"

	"github.com/allisson/delta/internal/errors"
)

// Query parameter names.
const (
	ParamPage           = "page"
	ParamPageSize       = "pageSize"
	ParamBaseSecret     = "baseSecret"
	ParamCreatedBy      = "createdBy"
	ParamRSAKeyOwner    = "rsaKeyOwner"
	ParamSecretID       = "secretId"
	ParamPurpose        = "purpose"
	MetadataParamPrefix = "metadata."
)

// Media types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// FormatETag renders a metadata version as a strong entity tag.
func FormatETag(version int) string {
	return strconv.Quote(strconv.Itoa(version))
}

// ParseETag reads a metadata version from an entity tag. Weak tags and unquoted values
// are accepted.
func ParseETag(value string) (int, error) {
	tag := strings.TrimPrefix(strings.TrimSpace(value), "W/")
	tag = strings.Trim(tag, `"`)
	version, err := strconv.Atoi(tag)
	if err != nil || version < 1 {
		return 0, errors.Wrapf(errors.ErrMalformedResponse, "invalid version tag %q", value)
	}
	return version, nil
}

// ParseIfMatch reads the expected version from an If-Match precondition.
func ParseIfMatch(value string) (int, error) {
	version, err := ParseETag(value)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "invalid If-Match value %q", value)
	}
	return version, nil
}
