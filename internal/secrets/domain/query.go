package domain

import (
	"github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/validation"
)

// SecretQuery filters a secret listing. Nil fields are omitted from the request.
type SecretQuery struct {
	BaseSecretID  *string
	CreatedBy     *string
	RSAKeyOwnerID *string
	Metadata      map[string]string
	LookupType    LookupType
	Page          *int
	PageSize      *int
}

// Validate checks every present filter before the query is serialized.
func (q *SecretQuery) Validate() error {
	if q.LookupType < LookupAny || q.LookupType > LookupDerived {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown lookup type %d", q.LookupType)
	}
	// A base secret filter only ever matches derived secrets.
	if q.LookupType == LookupBase && q.BaseSecretID != nil {
		return errors.Wrap(errors.ErrInvalidInput, "base_secret_id cannot be combined with a base lookup")
	}
	if err := validation.CheckOptionalIDs(map[string]*string{
		"base_secret_id":   q.BaseSecretID,
		"created_by":       q.CreatedBy,
		"rsa_key_owner_id": q.RSAKeyOwnerID,
	}); err != nil {
		return err
	}
	if err := validation.CheckMetadata("metadata", q.Metadata, false); err != nil {
		return err
	}
	return validation.CheckPage(q.Page, q.PageSize)
}
