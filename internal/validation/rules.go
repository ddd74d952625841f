// Package validation provides the guard rules every ApiClient operation runs before it
// touches the network.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/delta/internal/errors"
)

const (
	// MaxIdentifierLength bounds identity and secret ids.
	MaxIdentifierLength = 128
)

var (
	// identifierRegex accepts RFC 3986 unreserved characters, never starting with a dot,
	// so an id is safe as a URL path segment and as a file name.
	identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_~-][A-Za-z0-9._~-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Identifier validates that a string is a well-formed identity or secret reference.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return identifierRegex.MatchString(s)
	},
	validation.NewError("validation_identifier", "must be a well-formed identifier"),
)

// IDRules are the rules applied to every required identifier argument.
var IDRules = []validation.Rule{
	validation.Required,
	validation.Length(1, MaxIdentifierLength),
	Identifier,
}

// OptionalIDRules are applied to optional (pointer) identifier arguments. A nil pointer
// passes; a non-nil pointer must hold a well-formed identifier.
var OptionalIDRules = []validation.Rule{
	validation.NilOrNotEmpty,
	validation.Length(1, MaxIdentifierLength),
	Identifier,
}

// MetadataKeys validates that every key of a metadata map is non-blank and free of
// leading or trailing whitespace.
var MetadataKeys = validation.By(func(value interface{}) error {
	m, ok := value.(map[string]string)
	if !ok {
		return validation.NewError("validation_metadata_type", "must be a map of strings")
	}
	for k := range m {
		if strings.TrimSpace(k) == "" {
			return validation.NewError("validation_metadata_key", "metadata keys must not be blank")
		}
		if k != strings.TrimSpace(k) {
			return validation.NewError(
				"validation_metadata_key_whitespace",
				"metadata keys must not contain leading or trailing whitespace",
			)
		}
	}
	return nil
})

// Positive validates optional pagination values. A nil pointer passes.
var Positive = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	n, ok := v.(int)
	if !ok {
		return validation.NewError("validation_positive_type", "must be an integer")
	}
	if n < 1 {
		return validation.NewError("validation_positive", "must be a positive integer")
	}
	return nil
})

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// CheckID is the guard for a required identifier argument.
func CheckID(name, value string) error {
	return WrapValidationError(validation.Errors{
		name: validation.Validate(value, IDRules...),
	}.Filter())
}

// CheckIDs guards several required identifier arguments given as name/value pairs.
func CheckIDs(pairs ...string) error {
	errs := validation.Errors{}
	for i := 0; i+1 < len(pairs); i += 2 {
		errs[pairs[i]] = validation.Validate(pairs[i+1], IDRules...)
	}
	return WrapValidationError(errs.Filter())
}

// CheckMetadata guards a metadata map. When required is true the map must be non-empty.
func CheckMetadata(name string, metadata map[string]string, required bool) error {
	rules := []validation.Rule{MetadataKeys}
	if required {
		rules = append([]validation.Rule{validation.Required.Error("must be a non-empty map")}, rules...)
	}
	return WrapValidationError(validation.Errors{
		name: validation.Validate(metadata, rules...),
	}.Filter())
}

// CheckOptionalIDs guards optional identifier arguments keyed by name. Nil values pass.
func CheckOptionalIDs(fields map[string]*string) error {
	errs := validation.Errors{}
	for name, value := range fields {
		errs[name] = validation.Validate(value, OptionalIDRules...)
	}
	return WrapValidationError(errs.Filter())
}

// CheckPage guards optional pagination arguments.
func CheckPage(page, pageSize *int) error {
	return WrapValidationError(validation.Errors{
		"page":      validation.Validate(page, Positive),
		"page_size": validation.Validate(pageSize, Positive),
	}.Filter())
}

// CheckPublicKey guards a public key. Keys are opaque to the client; the service decides
// whether it can parse them.
func CheckPublicKey(name, value string) error {
	return WrapValidationError(validation.Errors{
		name: validation.Validate(value, validation.Required, NotBlank),
	}.Filter())
}
