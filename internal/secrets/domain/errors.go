package domain

import (
	"github.com/allisson/delta/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrSecretNotFound indicates the secret does not exist or is not visible to the requestor.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrBaseSecretRequired indicates a share referenced a derived secret instead of a base one.
	ErrBaseSecretRequired = errors.Wrap(errors.ErrInvalidInput, "base secret required")
)
