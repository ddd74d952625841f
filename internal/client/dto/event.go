package dto

import (
	"time"

	eventsDomain "github.com/allisson/delta/internal/events/domain"
)

// EventDetailsResponse names the participants of an audited action.
type EventDetailsResponse struct {
	SecretID      string `json:"secretId,omitempty"`
	BaseSecretID  string `json:"baseSecretId,omitempty"`
	RequestorID   string `json:"requestorId,omitempty"`
	RSAKeyOwnerID string `json:"rsaKeyOwnerId,omitempty"`
	SecretOwnerID string `json:"secretOwnerId,omitempty"`
}

// EventResponse is the representation of an audit event.
type EventResponse struct {
	ID           string               `json:"id"`
	Type         string               `json:"type"`
	Purpose      string               `json:"purpose,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
	Host         string               `json:"host,omitempty"`
	SourceIP     string               `json:"sourceIp,omitempty"`
	EventDetails EventDetailsResponse `json:"eventDetails"`
}

// ToDomain converts the response to a domain event.
func (r *EventResponse) ToDomain() *eventsDomain.Event {
	return &eventsDomain.Event{
		ID:        r.ID,
		Type:      r.Type,
		Purpose:   r.Purpose,
		Timestamp: r.Timestamp.UTC(),
		Host:      r.Host,
		SourceIP:  r.SourceIP,
		Details: eventsDomain.EventDetails{
			SecretID:      r.EventDetails.SecretID,
			BaseSecretID:  r.EventDetails.BaseSecretID,
			RequestorID:   r.EventDetails.RequestorID,
			RSAKeyOwnerID: r.EventDetails.RSAKeyOwnerID,
			SecretOwnerID: r.EventDetails.SecretOwnerID,
		},
	}
}

// MapEventToResponse converts a domain event to its wire form.
func MapEventToResponse(event *eventsDomain.Event) EventResponse {
	return EventResponse{
		ID:        event.ID,
		Type:      event.Type,
		Purpose:   event.Purpose,
		Timestamp: event.Timestamp,
		Host:      event.Host,
		SourceIP:  event.SourceIP,
		EventDetails: EventDetailsResponse{
			SecretID:      event.Details.SecretID,
			BaseSecretID:  event.Details.BaseSecretID,
			RequestorID:   event.Details.RequestorID,
			RSAKeyOwnerID: event.Details.RSAKeyOwnerID,
			SecretOwnerID: event.Details.SecretOwnerID,
		},
	}
}
