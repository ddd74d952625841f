// Package domain defines the secret records exchanged with the Delta service. A base
// secret is created by its owner; a derived secret re-encrypts the same content for
// another identity's public encryption key and points back to its base.
package domain

import (
	"time"
)

// Secret is a stored secret as seen by the requestor.
type Secret struct {
	// ID is the server-assigned identifier.
	ID string
	// Href is the canonical resource location.
	Href string
	// Content is the opaque, client-encrypted payload. Nil when not fetched.
	Content *string
	// EncryptionDetails holds opaque parameters needed to decrypt Content.
	EncryptionDetails map[string]string
	// BaseSecretID is empty for a base secret and set for a derived one.
	BaseSecretID string
	// RSAKeyOwnerID is the identity whose public encryption key protects EncryptionDetails.
	RSAKeyOwnerID string
	// CreatedBy is the identity that stored the secret.
	CreatedBy string
	// Created is the server-side creation time.
	Created time.Time
}

// IsBase reports whether the secret is a base secret.
func (s *Secret) IsBase() bool {
	return s.BaseSecretID == ""
}

// IsDerived reports whether the secret was shared from a base secret.
func (s *Secret) IsDerived() bool {
	return s.BaseSecretID != ""
}

// SecretMetadata is a version-tagged snapshot of a secret's metadata.
type SecretMetadata struct {
	Entries map[string]string
	// Version is the optimistic concurrency token; a fresh secret starts at 1.
	Version int
}

// LookupType restricts secret listings to base or derived secrets.
type LookupType int

const (
	// LookupAny applies no restriction.
	LookupAny LookupType = iota
	// LookupBase returns only base secrets.
	LookupBase
	// LookupDerived returns only derived secrets.
	LookupDerived
)

// String returns the lower-case name of the lookup type.
func (l LookupType) String() string {
	switch l {
	case LookupBase:
		return "base"
	case LookupDerived:
		return "derived"
	default:
		return "any"
	}
}

// ParseLookupType parses the names produced by String.
func ParseLookupType(s string) (LookupType, bool) {
	switch s {
	case "", "any":
		return LookupAny, true
	case "base":
		return LookupBase, true
	case "derived":
		return LookupDerived, true
	default:
		return LookupAny, false
	}
}

// Matches reports whether a secret passes the lookup restriction.
func (l LookupType) Matches(s *Secret) bool {
	switch l {
	case LookupBase:
		return s.IsBase()
	case LookupDerived:
		return s.IsDerived()
	default:
		return true
	}
}
