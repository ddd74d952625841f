// Package errors provides standardized errors that express client intent rather than
// transport details. Every ApiClient operation fails with an error that matches one of
// the sentinels below through errors.Is.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard errors shared by all packages.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the caller supplied malformed arguments. It is always
	// detected before any network call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated identity doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrSigning indicates a request could not be signed (key lookup or canonicalization failure).
	ErrSigning = errors.New("signing failed")

	// ErrUnknownIdentity indicates the key store holds no signing key for an identity.
	ErrUnknownIdentity = Wrap(ErrSigning, "unknown identity")

	// ErrRemote indicates the service answered with a non-2xx status.
	ErrRemote = errors.New("remote error")

	// ErrVersionConflict indicates a conditional metadata update was rejected because the
	// supplied version no longer matches the server's current version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrMalformedResponse indicates a 2xx response that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// RemoteError describes a non-2xx response. It matches ErrRemote and, depending on the
// status code, one of the more specific sentinels.
type RemoteError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	// Conditional is set when the request carried an If-Match precondition.
	Conditional bool
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Unwrap exposes ErrRemote and the status category.
func (e *RemoteError) Unwrap() []error {
	errs := []error{ErrRemote}
	switch e.StatusCode {
	case http.StatusNotFound:
		errs = append(errs, ErrNotFound)
	case http.StatusUnauthorized:
		errs = append(errs, ErrUnauthorized)
	case http.StatusForbidden:
		errs = append(errs, ErrForbidden)
	case http.StatusConflict, http.StatusPreconditionFailed:
		if e.Conditional {
			errs = append(errs, ErrVersionConflict)
		} else {
			errs = append(errs, ErrConflict)
		}
	}
	return errs
}

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join is a convenience wrapper around errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
