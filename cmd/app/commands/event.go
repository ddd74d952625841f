package commands

import (
	"context"
	"fmt"

	"github.com/allisson/delta/internal/client"
	"github.com/allisson/delta/internal/client/dto"
	eventsDomain "github.com/allisson/delta/internal/events/domain"
)

// RunListEvents lists audit events visible to the requestor.
func RunListEvents(
	ctx context.Context,
	apiClient client.APIClient,
	requestorID, secretID, rsaKeyOwnerID string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	events, err := apiClient.GetEvents(ctx, requestorID, &eventsDomain.EventQuery{
		SecretID:      optional(secretID),
		RSAKeyOwnerID: optional(rsaKeyOwnerID),
	})
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	if format == "json" {
		out := make([]dto.EventResponse, 0, len(events))
		for _, event := range events {
			out = append(out, dto.MapEventToResponse(event))
		}
		outputJSON(out, io.Writer)
		return nil
	}

	_, _ = fmt.Fprintf(io.Writer, "Found %d events\n", len(events))
	for _, event := range events {
		_, _ = fmt.Fprintf(io.Writer, "%s\t%s\t%s\tsecret=%s\trequestor=%s\n",
			event.Timestamp.Format("2006-01-02 15:04:05"),
			event.Type,
			event.ID,
			event.Details.SecretID,
			event.Details.RequestorID,
		)
	}
	return nil
}
