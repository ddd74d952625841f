package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/allisson/delta/internal/client/dto"
	eventsDomain "github.com/allisson/delta/internal/events/domain"
	"github.com/allisson/delta/internal/validation"
)

const eventsResource = "events"

// GetEvents implements APIClient.
func (c *Client) GetEvents(
	ctx context.Context,
	requestorID string,
	query *eventsDomain.EventQuery,
) ([]*eventsDomain.Event, error) {
	if err := validation.CheckID("requestor_id", requestorID); err != nil {
		return nil, err
	}
	if query == nil {
		query = &eventsDomain.EventQuery{}
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set(dto.ParamPurpose, eventsDomain.AuditPurpose)
	if query.SecretID != nil {
		params.Set(dto.ParamSecretID, *query.SecretID)
	}
	if query.RSAKeyOwnerID != nil {
		params.Set(dto.ParamRSAKeyOwner, *query.RSAKeyOwnerID)
	}

	resp, err := c.do(ctx, &request{
		method:      http.MethodGet,
		segments:    []string{eventsResource},
		query:       params,
		requestorID: requestorID,
	})
	if err != nil {
		return nil, err
	}

	var out []dto.EventResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	events := make([]*eventsDomain.Event, 0, len(out))
	for i := range out {
		events = append(events, out[i].ToDomain())
	}
	return events, nil
}
