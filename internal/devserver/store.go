// Package devserver is an in-memory service that speaks the Delta wire protocol. It
// verifies request signatures, enforces secret visibility, versions metadata and
// records audit events, which makes it suitable for local development and tests.
package devserver

import (
	"context"
	"crypto/rsa"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/delta/internal/errors"
	eventsDomain "github.com/allisson/delta/internal/events/domain"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	"github.com/allisson/delta/internal/keystore"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
	"github.com/allisson/delta/internal/validation"
)

// Origin describes where a request came from; it is copied into audit events.
type Origin struct {
	Host     string
	SourceIP string
}

// SecretFilter narrows a secret listing.
type SecretFilter struct {
	// BaseSecretID selects secrets derived from one base secret.
	BaseSecretID  string
	Lookup        secretsDomain.LookupType
	CreatedBy     string
	RSAKeyOwnerID string
	Metadata      map[string]string
	Page          int
	PageSize      int
}

// EventFilter narrows an event listing.
type EventFilter struct {
	SecretID      string
	RSAKeyOwnerID string
}

type identityRecord struct {
	identity   identityDomain.Identity
	signingKey *rsa.PublicKey
}

type secretRecord struct {
	secret   secretsDomain.Secret
	metadata map[string]string
	version  int
}

// Store holds all service state in memory. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	identities map[string]*identityRecord
	secrets    map[string]*secretRecord
	events     []*eventsDomain.Event
	now        func() time.Time
}

// NewStore creates an empty store. A nil clock selects time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		identities: make(map[string]*identityRecord),
		secrets:    make(map[string]*secretRecord),
		now:        now,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RegisterIdentity stores a new identity and returns its id.
func (s *Store) RegisterIdentity(ctx context.Context, input *identityDomain.RegisterIdentityInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}
	signingKey, err := keystore.DecodePublicKey(input.PublicSigningKey)
	if err != nil {
		return "", err
	}
	if _, err := keystore.DecodePublicKey(input.PublicEncryptionKey); err != nil {
		return "", err
	}

	record := &identityRecord{
		identity: identityDomain.Identity{
			ID:                  newID(),
			PublicEncryptionKey: input.PublicEncryptionKey,
			PublicSigningKey:    input.PublicSigningKey,
			Metadata:            cloneMetadata(input.Metadata),
			Version:             1,
		},
		signingKey: signingKey,
	}
	if input.ExternalID != nil {
		record.identity.ExternalID = *input.ExternalID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[record.identity.ID] = record
	return record.identity.ID, nil
}

// PublicSigningKey resolves the key that verifies an identity's requests.
func (s *Store) PublicSigningKey(ctx context.Context, identityID string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.identities[identityID]
	if !ok {
		return nil, identityDomain.ErrIdentityNotFound
	}
	return record.signingKey, nil
}

// GetIdentity returns an identity.
func (s *Store) GetIdentity(ctx context.Context, identityID string) (*identityDomain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.identities[identityID]
	if !ok {
		return nil, identityDomain.ErrIdentityNotFound
	}
	return cloneIdentity(&record.identity), nil
}

// FindIdentities returns the identities whose metadata contains every given entry,
// ordered by id.
func (s *Store) FindIdentities(
	ctx context.Context,
	metadata map[string]string,
	page, pageSize int,
) ([]*identityDomain.Identity, error) {
	if err := (&identityDomain.IdentityQuery{Metadata: metadata}).Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var found []*identityDomain.Identity
	for _, record := range s.identities {
		if containsMetadata(record.identity.Metadata, metadata) {
			found = append(found, cloneIdentity(&record.identity))
		}
	}
	slices.SortFunc(found, func(a, b *identityDomain.Identity) int {
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(found, page, pageSize), nil
}

// UpdateIdentityMetadata replaces an identity's metadata when version is current and
// returns the new version. Identities may only update themselves.
func (s *Store) UpdateIdentityMetadata(
	ctx context.Context,
	requestorID, identityID string,
	metadata map[string]string,
	version int,
) (int, error) {
	if requestorID != identityID {
		return 0, apperrors.Wrap(apperrors.ErrForbidden, "identities may only update their own metadata")
	}
	if err := validation.CheckMetadata("metadata", metadata, false); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.identities[identityID]
	if !ok {
		return 0, identityDomain.ErrIdentityNotFound
	}
	if record.identity.Version != version {
		return 0, apperrors.Wrapf(apperrors.ErrVersionConflict,
			"identity %s is at version %d", identityID, record.identity.Version)
	}
	record.identity.Metadata = cloneMetadata(metadata)
	record.identity.Version++
	return record.identity.Version, nil
}

// CreateSecret stores a base secret, or a derived one when baseSecretID is set.
func (s *Store) CreateSecret(
	ctx context.Context,
	origin Origin,
	requestorID, content string,
	encryptionDetails map[string]string,
	baseSecretID, rsaKeyOwnerID string,
) (*secretsDomain.Secret, error) {
	if content == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "content: cannot be blank")
	}
	if len(encryptionDetails) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "encryptionDetails: cannot be blank")
	}
	if (baseSecretID == "") != (rsaKeyOwnerID == "") {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "baseSecret and rsaKeyOwner must be set together")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content = strings.Clone(content)
	secret := secretsDomain.Secret{
		ID:                newID(),
		Content:           &content,
		EncryptionDetails: maps.Clone(encryptionDetails),
		RSAKeyOwnerID:     requestorID,
		CreatedBy:         requestorID,
		Created:           s.now().UTC(),
	}
	eventType := eventsDomain.TypeSecretCreated

	if baseSecretID != "" {
		base, ok := s.secrets[baseSecretID]
		if !ok {
			return nil, secretsDomain.ErrSecretNotFound
		}
		if base.secret.IsDerived() {
			return nil, secretsDomain.ErrBaseSecretRequired
		}
		if base.secret.CreatedBy != requestorID {
			return nil, apperrors.Wrap(apperrors.ErrForbidden, "only the creator may share a secret")
		}
		if _, ok := s.identities[rsaKeyOwnerID]; !ok {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "rsaKeyOwner %s is not registered", rsaKeyOwnerID)
		}
		secret.BaseSecretID = baseSecretID
		secret.RSAKeyOwnerID = rsaKeyOwnerID
		eventType = eventsDomain.TypeSecretShared
	}

	s.secrets[secret.ID] = &secretRecord{secret: secret, metadata: map[string]string{}, version: 1}
	s.recordEvent(origin, eventType, requestorID, &secret)
	return cloneSecret(&secret, true), nil
}

// visibleSecret returns a secret the requestor created or can decrypt.
func (s *Store) visibleSecret(requestorID, secretID string) (*secretRecord, error) {
	record, ok := s.secrets[secretID]
	if !ok {
		return nil, secretsDomain.ErrSecretNotFound
	}
	if record.secret.CreatedBy != requestorID && record.secret.RSAKeyOwnerID != requestorID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "secret is not shared with the requestor")
	}
	return record, nil
}

// ownedSecret returns a secret the requestor created.
func (s *Store) ownedSecret(requestorID, secretID string) (*secretRecord, error) {
	record, err := s.visibleSecret(requestorID, secretID)
	if err != nil {
		return nil, err
	}
	if record.secret.CreatedBy != requestorID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "only the creator may modify a secret")
	}
	return record, nil
}

// GetSecret returns a secret's descriptor without its content.
func (s *Store) GetSecret(ctx context.Context, requestorID, secretID string) (*secretsDomain.Secret, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, err := s.visibleSecret(requestorID, secretID)
	if err != nil {
		return nil, err
	}
	return cloneSecret(&record.secret, false), nil
}

// GetSecretContent returns a secret's content and audits the read.
func (s *Store) GetSecretContent(ctx context.Context, origin Origin, requestorID, secretID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.visibleSecret(requestorID, secretID)
	if err != nil {
		return "", err
	}
	s.recordEvent(origin, eventsDomain.TypeSecretRead, requestorID, &record.secret)
	return *record.secret.Content, nil
}

// GetSecretMetadata returns a secret's metadata and current version.
func (s *Store) GetSecretMetadata(
	ctx context.Context,
	requestorID, secretID string,
) (*secretsDomain.SecretMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, err := s.visibleSecret(requestorID, secretID)
	if err != nil {
		return nil, err
	}
	return &secretsDomain.SecretMetadata{Entries: cloneMetadata(record.metadata), Version: record.version}, nil
}

// UpdateSecretMetadata replaces a secret's metadata when version is current and returns
// the new version.
func (s *Store) UpdateSecretMetadata(
	ctx context.Context,
	requestorID, secretID string,
	metadata map[string]string,
	version int,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.ownedSecret(requestorID, secretID)
	if err != nil {
		return 0, err
	}
	if record.version != version {
		return 0, apperrors.Wrapf(apperrors.ErrVersionConflict, "secret %s is at version %d", secretID, record.version)
	}
	record.metadata = cloneMetadata(metadata)
	record.version++
	return record.version, nil
}

// DeleteSecret removes a secret and audits the deletion.
func (s *Store) DeleteSecret(ctx context.Context, origin Origin, requestorID, secretID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.ownedSecret(requestorID, secretID)
	if err != nil {
		return err
	}
	delete(s.secrets, secretID)
	s.recordEvent(origin, eventsDomain.TypeSecretDeleted, requestorID, &record.secret)
	return nil
}

// ListSecrets returns the secrets visible to the requestor that match filter, ordered
// by id. Content is not included.
func (s *Store) ListSecrets(
	ctx context.Context,
	requestorID string,
	filter SecretFilter,
) ([]*secretsDomain.Secret, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []*secretsDomain.Secret
	for _, record := range s.secrets {
		secret := &record.secret
		switch {
		case secret.CreatedBy != requestorID && secret.RSAKeyOwnerID != requestorID:
			continue
		case !filter.Lookup.Matches(secret):
			continue
		case filter.BaseSecretID != "" && secret.BaseSecretID != filter.BaseSecretID:
			continue
		case filter.CreatedBy != "" && secret.CreatedBy != filter.CreatedBy:
			continue
		case filter.RSAKeyOwnerID != "" && secret.RSAKeyOwnerID != filter.RSAKeyOwnerID:
			continue
		case !containsMetadata(record.metadata, filter.Metadata):
			continue
		}
		found = append(found, cloneSecret(secret, false))
	}
	slices.SortFunc(found, func(a, b *secretsDomain.Secret) int {
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(found, filter.Page, filter.PageSize), nil
}

// ListEvents returns audit events in which the requestor took part, oldest first.
func (s *Store) ListEvents(
	ctx context.Context,
	requestorID string,
	filter EventFilter,
) ([]*eventsDomain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []*eventsDomain.Event
	for _, event := range s.events {
		d := event.Details
		if d.RequestorID != requestorID && d.SecretOwnerID != requestorID && d.RSAKeyOwnerID != requestorID {
			continue
		}
		if filter.SecretID != "" && d.SecretID != filter.SecretID {
			continue
		}
		if filter.RSAKeyOwnerID != "" && d.RSAKeyOwnerID != filter.RSAKeyOwnerID {
			continue
		}
		copied := *event
		found = append(found, &copied)
	}
	return found, nil
}

// recordEvent must be called with the write lock held.
func (s *Store) recordEvent(origin Origin, eventType, requestorID string, secret *secretsDomain.Secret) {
	s.events = append(s.events, &eventsDomain.Event{
		ID:        newID(),
		Type:      eventType,
		Purpose:   eventsDomain.AuditPurpose,
		Timestamp: s.now().UTC(),
		Host:      origin.Host,
		SourceIP:  origin.SourceIP,
		Details: eventsDomain.EventDetails{
			SecretID:      secret.ID,
			BaseSecretID:  secret.BaseSecretID,
			RequestorID:   requestorID,
			RSAKeyOwnerID: secret.RSAKeyOwnerID,
			SecretOwnerID: secret.CreatedBy,
		},
	})
}

func containsMetadata(have, want map[string]string) bool {
	for k, v := range want {
		if got, ok := have[k]; !ok || got != v {
			return false
		}
	}
	return true
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m)
}

func cloneIdentity(identity *identityDomain.Identity) *identityDomain.Identity {
	copied := *identity
	copied.Metadata = cloneMetadata(identity.Metadata)
	return &copied
}

func cloneSecret(secret *secretsDomain.Secret, withContent bool) *secretsDomain.Secret {
	copied := *secret
	copied.EncryptionDetails = maps.Clone(secret.EncryptionDetails)
	copied.Content = nil
	if withContent && secret.Content != nil {
		content := *secret.Content
		copied.Content = &content
	}
	return &copied
}

// paginate returns one 1-based page of items. A non-positive pageSize returns all.
func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	if len(items) == 0 || page-1 > (len(items)-1)/pageSize {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	return items[start:end]
}
