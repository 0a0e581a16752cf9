// Package events publishes trip lifecycle events for other services.
// Publishing is best-effort: callers log failures and move on.
package events

import (
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/yakoovad/planner/pkg/logger"
	"go.uber.org/zap"
	"time"
)

const (
	TripCreated   = "trip.created"
	TripConfirmed = "trip.confirmed"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

type TripCreatedEvent struct {
	TripID       uuid.UUID `json:"trip_id"`
	Destination  string    `json:"destination"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	OwnerEmail   string    `json:"owner_email"`
	InvitedCount int       `json:"invited_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type TripConfirmedEvent struct {
	TripID       uuid.UUID `json:"trip_id"`
	EmailsSent   int       `json:"emails_sent"`
	EmailsFailed int       `json:"emails_failed"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("planner"))
	if err != nil {
		return nil, errors.Wrap(err, "connect to nats")
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	logger.FromContext(ctx).Debug("publishing event",
		zap.String("subject", subject),
		zap.ByteString("data", payload),
	)

	return errors.Wrapf(n.conn.Publish(subject, payload), "publish %s", subject)
}

func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// NopPublisher drops every event. Used when NATS_URL is not set.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
