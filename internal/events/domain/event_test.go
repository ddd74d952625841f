package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/delta/internal/errors"
)

func TestEventQuery_Validate(t *testing.T) {
	id := "s1"
	bad := "s 1"

	assert.NoError(t, (&EventQuery{}).Validate())
	assert.NoError(t, (&EventQuery{SecretID: &id, RSAKeyOwnerID: &id}).Validate())
	assert.ErrorIs(t, (&EventQuery{RSAKeyOwnerID: &bad}).Validate(), errors.ErrInvalidInput)
}
