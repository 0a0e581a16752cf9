// Package notify delivers trip confirmation emails.
//
// A Notifier renders one email per recipient and hands it to a Sender, the
// transport (MailerSend API, SMTP relay or the log in development). Every
// failure is reported as a *SendError for that recipient only.
package notify

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"time"
)

type Kind string

const (
	// KindTripCreated asks the owner to confirm a newly created trip.
	KindTripCreated Kind = "trip_created"
	// KindTripInvite asks an invited participant to confirm attendance.
	KindTripInvite Kind = "trip_invite"
)

type Recipient struct {
	Name  string
	Email string
}

// TripContext is what the email says about the trip.
type TripContext struct {
	Kind        Kind
	TripID      uuid.UUID
	Destination string
	StartsAt    time.Time
	EndsAt      time.Time
	Link        string
}

type Notifier interface {
	SendConfirmationEmail(ctx context.Context, to Recipient, trip TripContext) error
}

type Message struct {
	To      Recipient
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type SendError struct {
	Recipient string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

type EmailNotifier struct {
	sender  Sender
	timeout time.Duration
}

// NewEmailNotifier bounds every delivery by timeout; zero means no bound.
func NewEmailNotifier(sender Sender, timeout time.Duration) *EmailNotifier {
	return &EmailNotifier{sender: sender, timeout: timeout}
}

func (n *EmailNotifier) SendConfirmationEmail(ctx context.Context, to Recipient, trip TripContext) error {
	msg, err := Render(to, trip)
	if err != nil {
		return &SendError{Recipient: to.Email, Err: err}
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err = n.sender.Send(ctx, msg); err != nil {
		return &SendError{Recipient: to.Email, Err: err}
	}
	return nil
}
