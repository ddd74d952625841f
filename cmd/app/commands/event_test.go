package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientMocks "github.com/allisson/delta/internal/client/mocks"
	"github.com/allisson/delta/internal/client/dto"
	eventsDomain "github.com/allisson/delta/internal/events/domain"
)

func TestRunListEvents(t *testing.T) {
	ctx := context.Background()
	secretID := "s1"
	query := &eventsDomain.EventQuery{SecretID: &secretID}
	events := []*eventsDomain.Event{
		{
			ID:        "e1",
			Type:      eventsDomain.TypeSecretCreated,
			Purpose:   eventsDomain.AuditPurpose,
			Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Details:   eventsDomain.EventDetails{SecretID: "s1", RequestorID: "alice"},
		},
	}

	t.Run("text", func(t *testing.T) {
		api := clientMocks.NewMockAPIClient(t)
		api.On("GetEvents", ctx, "alice", query).Return(events, nil)

		var out bytes.Buffer
		err := RunListEvents(ctx, api, "alice", "s1", "", "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Found 1 events")
		assert.Contains(t, out.String(), "2026-03-01 10:00:00\tsecret_created\te1\tsecret=s1\trequestor=alice")
	})

	t.Run("json", func(t *testing.T) {
		api := clientMocks.NewMockAPIClient(t)
		api.On("GetEvents", ctx, "alice", query).Return(events, nil)

		var out bytes.Buffer
		err := RunListEvents(ctx, api, "alice", "s1", "", "json", IOTuple{Writer: &out})
		require.NoError(t, err)

		var got []dto.EventResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "secret_created", got[0].Type)
		assert.Equal(t, "alice", got[0].EventDetails.RequestorID)
	})
}
