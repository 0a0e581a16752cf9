package events

import (
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}

	assert.NoError(t, p.Publish(context.Background(), TripCreated, TripCreatedEvent{}))
	assert.NoError(t, p.Close())
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1")
	require.Error(t, err)
	assert.ErrorContains(t, err, "connect to nats")
}

func TestTripConfirmedEvent_JSON(t *testing.T) {
	id := uuid.MustParse("7f1c9a52-1b43-4a6e-9c53-2d5b8a0e4f11")
	ev := TripConfirmedEvent{
		TripID:       id,
		EmailsSent:   2,
		EmailsFailed: 1,
		ConfirmedAt:  time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"trip_id": "7f1c9a52-1b43-4a6e-9c53-2d5b8a0e4f11",
		"emails_sent": 2,
		"emails_failed": 1,
		"confirmed_at": "2026-10-01T12:00:00Z"
	}`, string(raw))
}
