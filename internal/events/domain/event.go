// Package domain defines the audit events recorded by the Delta service.
package domain

import (
	"time"

	"github.com/allisson/delta/internal/validation"
)

// AuditPurpose is the only event purpose the service exposes.
const AuditPurpose = "AUDIT"

// Event types recorded for secrets.
const (
	TypeSecretCreated = "secret_created"
	TypeSecretShared  = "secret_shared"
	TypeSecretRead    = "secret_read"
	TypeSecretDeleted = "secret_deleted"
)

// Event is an audit record of an action on a secret.
type Event struct {
	ID        string
	Type      string
	Purpose   string
	Timestamp time.Time
	Host      string
	SourceIP  string
	Details   EventDetails
}

// EventDetails identifies the participants of an audited action.
type EventDetails struct {
	SecretID      string
	BaseSecretID  string
	RequestorID   string
	RSAKeyOwnerID string
	SecretOwnerID string
}

// EventQuery filters an event listing. Nil fields are omitted.
type EventQuery struct {
	SecretID      *string
	RSAKeyOwnerID *string
}

// Validate checks the present filters.
func (q *EventQuery) Validate() error {
	return validation.CheckOptionalIDs(map[string]*string{
		"secret_id":        q.SecretID,
		"rsa_key_owner_id": q.RSAKeyOwnerID,
	})
}
