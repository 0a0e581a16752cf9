package service

import (
	"context"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yakoovad/planner/internal/events"
	"github.com/yakoovad/planner/internal/model"
	"github.com/yakoovad/planner/internal/notify"
	"github.com/yakoovad/planner/internal/repository"
	"github.com/yakoovad/planner/internal/telemetry"
	"github.com/yakoovad/planner/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"slices"
	"sync"
	"time"
)

const defaultNotifyConcurrency = 8

type ConfirmationService struct {
	links       *Links
	concurrency int

	trips        repository.TripRepository
	participants repository.ParticipantRepository
	notifier     notify.Notifier
	events       events.Publisher
	now          func() time.Time
}

func NewConfirmationService(links *Links) *ConfirmationService {
	return &ConfirmationService{
		links:       links,
		concurrency: defaultNotifyConcurrency,
		events:      events.NopPublisher{},
		now:         time.Now,
	}
}

// ConfirmTrip marks the trip confirmed and invites every non-owner
// participant. Confirming an already confirmed trip only returns the
// redirect. Failed invitations end up in the report and never fail the call.
func (c *ConfirmationService) ConfirmTrip(ctx context.Context, tripID uuid.UUID) (*model.Confirmation, *Error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ConfirmationService.ConfirmTrip",
		trace.WithAttributes(attribute.String("trip.id", tripID.String())))
	defer span.End()

	l := logger.FromContext(ctx).With(zap.Stringer("trip_id", tripID))

	trip, err := c.trips.Get(ctx, tripID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, NewError(ErrorCodeNotFound, "trip not found")
	case err != nil:
		l.Error("failed to get trip", zap.Error(err))
		return nil, NewError(ErrorCodePersistence, "failed to get trip")
	}

	res := &model.Confirmation{
		TripID:      tripID,
		RedirectURL: c.links.TripPage(tripID),
	}

	if trip.IsConfirmed {
		l.Debug("trip already confirmed")
		res.AlreadyConfirmed = true
		return res, nil
	}

	// Invitees are read before the update so a failed read leaves the trip unconfirmed.
	isOwner := false
	invitees, err := c.participants.List(ctx, repository.ParticipantFilter{
		TripID:  tripID,
		IsOwner: &isOwner,
	})
	if err != nil {
		l.Error("failed to list invitees", zap.Error(err))
		return nil, NewError(ErrorCodePersistence, "failed to list participants")
	}

	err = c.trips.SetConfirmed(ctx, tripID)
	switch {
	case errors.Is(err, repository.ErrNoChange):
		l.Info("trip confirmed by a concurrent request")
		res.AlreadyConfirmed = true
		return res, nil
	case err != nil:
		l.Error("failed to confirm trip", zap.Error(err))
		return nil, NewError(ErrorCodePersistence, "failed to confirm trip")
	}

	res.Report = c.dispatchInvites(ctx, trip, invitees)

	l.Info("trip confirmed",
		zap.Int("attempted", res.Report.Attempted),
		zap.Int("sent", res.Report.Sent),
		zap.Strings("failed", res.Report.Failed))

	if err = c.events.Publish(context.WithoutCancel(ctx), events.TripConfirmed, events.TripConfirmedEvent{
		TripID:       tripID,
		EmailsSent:   res.Report.Sent,
		EmailsFailed: len(res.Report.Failed),
		ConfirmedAt:  c.now(),
	}); err != nil {
		l.Warn("failed to publish trip confirmed event", zap.Error(err))
	}

	return res, nil
}

// dispatchInvites sends one email per invitee with at most c.concurrency in
// flight and waits for all of them. Sends outlive the caller's cancellation.
func (c *ConfirmationService) dispatchInvites(ctx context.Context, trip *repository.Trip, invitees []*repository.Participant) model.DispatchReport {
	report := model.DispatchReport{Attempted: len(invitees)}
	if len(invitees) == 0 {
		return report
	}

	l := logger.FromContext(ctx)
	sendCtx := context.WithoutCancel(ctx)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.concurrency)

	for _, p := range invitees {
		g.Go(func() error {
			ctx, span := telemetry.Tracer().Start(sendCtx, "notify.TripInvite",
				trace.WithAttributes(attribute.String("participant.id", p.ID.String())))
			defer span.End()

			var name string
			if p.Name != nil {
				name = *p.Name
			}

			err := c.notifier.SendConfirmationEmail(ctx,
				notify.Recipient{Name: name, Email: p.Email},
				notify.TripContext{
					Kind:        notify.KindTripInvite,
					TripID:      trip.ID,
					Destination: trip.Destination,
					StartsAt:    trip.StartsAt,
					EndsAt:      trip.EndsAt,
					Link:        c.links.ParticipantConfirm(p.ID),
				},
			)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "send failed")
				l.Warn("failed to send trip invitation",
					zap.Stringer("trip_id", trip.ID),
					zap.Stringer("participant_id", p.ID),
					zap.String("email", p.Email),
					zap.Error(err))
				report.Failed = append(report.Failed, p.Email)
				return nil
			}

			report.Sent++
			return nil
		})
	}

	// Goroutines never return an error; failures live in the report.
	_ = g.Wait()

	slices.Sort(report.Failed)
	return report
}

func (c *ConfirmationService) WithTripRepo(r repository.TripRepository) *ConfirmationService {
	c.trips = r
	return c
}

func (c *ConfirmationService) WithParticipantRepo(r repository.ParticipantRepository) *ConfirmationService {
	c.participants = r
	return c
}

func (c *ConfirmationService) WithNotifier(n notify.Notifier) *ConfirmationService {
	c.notifier = n
	return c
}

func (c *ConfirmationService) WithPublisher(p events.Publisher) *ConfirmationService {
	c.events = p
	return c
}

// WithConcurrency bounds parallel sends; values below 1 keep the default.
func (c *ConfirmationService) WithConcurrency(n int) *ConfirmationService {
	if n > 0 {
		c.concurrency = n
	}
	return c
}

func (c *ConfirmationService) WithClock(now func() time.Time) *ConfirmationService {
	c.now = now
	return c
}
