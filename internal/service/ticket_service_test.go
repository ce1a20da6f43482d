package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/license-tracker/internal/errs"
	"github.com/psds-microservice/license-tracker/internal/model"
)

func TestParseTicketTimestampTruncatesFraction(t *testing.T) {
	got, err := ParseTicketTimestamp("2024-03-05T10:11:12.999999Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 11, 12, 0, time.UTC), got)

	// Truncation is deterministic: same input, same stored value.
	again, err := ParseTicketTimestamp("2024-03-05T10:11:12.999999Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(again))
}

func TestParseTicketTimestampAcceptsWholeSeconds(t *testing.T) {
	got, err := ParseTicketTimestamp("2024-03-05T10:11:12Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 11, 12, 0, time.UTC), got)
}

func TestTicketCreateStoresTruncatedTimestamp(t *testing.T) {
	db := openTestDB(t)
	svc := NewTicketService(db)

	err := svc.Create(context.Background(), CreateTicketInput{
		TicketID:  "TCK-3001",
		Action:    "Deactivated DMS license",
		Status:    "Closed",
		Timestamp: "2024-03-05T10:11:12.999999Z",
	})
	require.NoError(t, err)

	var stored model.Ticket
	require.NoError(t, db.First(&stored, "ticket_id = ?", "TCK-3001").Error)
	assert.True(t, stored.Timestamp.UTC().Equal(time.Date(2024, 3, 5, 10, 11, 12, 0, time.UTC)))
	assert.Nil(t, stored.Notes)
}

func TestTicketCreateMissingFieldsNamed(t *testing.T) {
	svc := NewTicketService(openTestDB(t))

	err := svc.Create(context.Background(), CreateTicketInput{Action: "something"})
	ve, ok := errs.AsValidation(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"ticketId", "status", "timestamp"}, ve.Fields)
}

func TestTicketCreateRejectsBadTimestamp(t *testing.T) {
	svc := NewTicketService(openTestDB(t))

	err := svc.Create(context.Background(), CreateTicketInput{
		TicketID:  "TCK-3002",
		Action:    "noop",
		Status:    "Open",
		Timestamp: "05/03/2024 10:11",
	})
	_, ok := errs.AsValidation(err)
	assert.True(t, ok)
}

func TestTicketCreateDuplicateIDFails(t *testing.T) {
	svc := NewTicketService(openTestDB(t))
	ctx := context.Background()

	in := CreateTicketInput{
		TicketID:  "TCK-3003",
		Action:    "first",
		Status:    "Open",
		Timestamp: "2024-03-05T10:11:12.000000Z",
	}
	require.NoError(t, svc.Create(ctx, in))
	in.Action = "second"
	assert.Error(t, svc.Create(ctx, in))
}

func TestTicketListOrdersByTimestampDesc(t *testing.T) {
	svc := NewTicketService(openTestDB(t))
	ctx := context.Background()

	stamps := []string{
		"2024-03-05T10:00:00.000000Z",
		"2024-03-05T12:00:00.000000Z",
		"2024-03-04T09:00:00.000000Z",
	}
	for i, ts := range stamps {
		require.NoError(t, svc.Create(ctx, CreateTicketInput{
			TicketID:  "TCK-" + string(rune('A'+i)),
			Action:    "entry",
			Status:    "Open",
			Timestamp: ts,
		}))
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "TCK-B", items[0].TicketID)
	assert.Equal(t, "TCK-A", items[1].TicketID)
	assert.Equal(t, "TCK-C", items[2].TicketID)
}

func TestTicketUpdateUnknownIDNotFound(t *testing.T) {
	svc := NewTicketService(openTestDB(t))

	err := svc.Update(context.Background(), "no-such-ticket", UpdateTicketInput{Status: strPtr("Closed")})
	assert.ErrorIs(t, err, errs.ErrTicketNotFound)
}

func TestTicketUpdateWritesProvidedFields(t *testing.T) {
	db := openTestDB(t)
	svc := NewTicketService(db)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, CreateTicketInput{
		TicketID:  "TCK-4001",
		Action:    "audit entry",
		Status:    "Open",
		Timestamp: "2024-03-05T10:11:12.000000Z",
		Notes:     "initial notes",
	}))

	require.NoError(t, svc.Update(ctx, "TCK-4001", UpdateTicketInput{Status: strPtr("Closed")}))

	var stored model.Ticket
	require.NoError(t, db.First(&stored, "ticket_id = ?", "TCK-4001").Error)
	assert.Equal(t, "Closed", stored.Status)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "initial notes", *stored.Notes)

	// Empty status is treated as absent; empty notes clear the column.
	require.NoError(t, svc.Update(ctx, "TCK-4001", UpdateTicketInput{Status: strPtr(""), Notes: strPtr("")}))
	require.NoError(t, db.First(&stored, "ticket_id = ?", "TCK-4001").Error)
	assert.Equal(t, "Closed", stored.Status)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "", *stored.Notes)
}

func TestTicketUpdateNothingProvided(t *testing.T) {
	svc := NewTicketService(openTestDB(t))

	err := svc.Update(context.Background(), "TCK-4002", UpdateTicketInput{})
	assert.ErrorIs(t, err, errs.ErrNoFields)
}
