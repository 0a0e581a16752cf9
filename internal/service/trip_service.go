package service

import (
	"context"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yakoovad/planner/internal/db"
	"github.com/yakoovad/planner/internal/events"
	"github.com/yakoovad/planner/internal/model"
	"github.com/yakoovad/planner/internal/notify"
	"github.com/yakoovad/planner/internal/repository"
	"github.com/yakoovad/planner/internal/telemetry"
	"github.com/yakoovad/planner/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"time"
)

type TripService struct {
	tx    db.Transactor
	links *Links

	trips        repository.TripRepository
	participants repository.ParticipantRepository
	notifier     notify.Notifier
	events       events.Publisher
	now          func() time.Time
}

func NewTripService(tx db.Transactor, links *Links) *TripService {
	return &TripService{
		tx:     tx,
		links:  links,
		events: events.NopPublisher{},
		now:    time.Now,
	}
}

// CreateTrip stores the trip together with its owner and invitees and asks
// the owner to confirm it. The email is best-effort: once the trip is
// committed a failed send is only logged.
func (t *TripService) CreateTrip(ctx context.Context, in *model.NewTrip) (uuid.UUID, *Error) {
	ctx, span := telemetry.Tracer().Start(ctx, "TripService.CreateTrip",
		trace.WithAttributes(attribute.Int("trip.invites", len(in.EmailsToInvite))))
	defer span.End()

	l := logger.FromContext(ctx)

	if err := ValidateTripDates(in.StartsAt, in.EndsAt, t.now()); err != nil {
		l.Info("rejected trip dates",
			zap.String("code", string(err.Code)),
			zap.Time("starts_at", in.StartsAt),
			zap.Time("ends_at", in.EndsAt))
		return uuid.Nil, err
	}

	trip := &repository.Trip{
		ID:          uuid.New(),
		Destination: in.Destination,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
	}
	participants := buildParticipants(trip.ID, in)
	span.SetAttributes(attribute.String("trip.id", trip.ID.String()))

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := t.trips.Create(txCtx, trip); err != nil {
			l.Error("failed to create trip", zap.Stringer("trip_id", trip.ID), zap.Error(err))
			return NewError(ErrorCodePersistence, "failed to create trip")
		}

		if err := t.participants.CreateMany(txCtx, participants); err != nil {
			l.Error("failed to create participants",
				zap.Stringer("trip_id", trip.ID),
				zap.Int("count", len(participants)),
				zap.Error(err))
			return NewError(ErrorCodePersistence, "failed to create participants")
		}

		return nil
	})
	if err != nil {
		var res *Error
		if errors.As(err, &res) {
			return uuid.Nil, res
		}
		l.Error("failed to commit trip", zap.Stringer("trip_id", trip.ID), zap.Error(err))
		return uuid.Nil, NewError(ErrorCodePersistence, "failed to create trip")
	}

	l.Info("trip created",
		zap.Stringer("trip_id", trip.ID),
		zap.String("destination", trip.Destination),
		zap.Int("participants", len(participants)))

	// The trip is durable from here on; nothing below may fail the request.
	detached := context.WithoutCancel(ctx)

	if err = t.notifier.SendConfirmationEmail(detached,
		notify.Recipient{Name: in.OwnerName, Email: in.OwnerEmail},
		notify.TripContext{
			Kind:        notify.KindTripCreated,
			TripID:      trip.ID,
			Destination: trip.Destination,
			StartsAt:    trip.StartsAt,
			EndsAt:      trip.EndsAt,
			Link:        t.links.TripConfirm(trip.ID),
		},
	); err != nil {
		span.RecordError(err)
		l.Warn("failed to send owner confirmation email",
			zap.Stringer("trip_id", trip.ID),
			zap.String("email", in.OwnerEmail),
			zap.Error(err))
	}

	if err = t.events.Publish(detached, events.TripCreated, events.TripCreatedEvent{
		TripID:       trip.ID,
		Destination:  trip.Destination,
		StartsAt:     trip.StartsAt,
		EndsAt:       trip.EndsAt,
		OwnerEmail:   in.OwnerEmail,
		InvitedCount: len(in.EmailsToInvite),
		CreatedAt:    trip.CreatedAt,
	}); err != nil {
		l.Warn("failed to publish trip created event", zap.Stringer("trip_id", trip.ID), zap.Error(err))
	}

	return trip.ID, nil
}

func buildParticipants(tripID uuid.UUID, in *model.NewTrip) []*repository.Participant {
	ownerName := in.OwnerName

	participants := make([]*repository.Participant, 0, len(in.EmailsToInvite)+1)
	participants = append(participants, &repository.Participant{
		ID:          uuid.New(),
		TripID:      tripID,
		Name:        &ownerName,
		Email:       in.OwnerEmail,
		IsOwner:     true,
		IsConfirmed: true,
	})

	for _, email := range in.EmailsToInvite {
		participants = append(participants, &repository.Participant{
			ID:     uuid.New(),
			TripID: tripID,
			Email:  email,
		})
	}

	return participants
}

// GetTrip returns the trip with all its participants, owner first.
func (t *TripService) GetTrip(ctx context.Context, tripID uuid.UUID) (*model.TripDetails, *Error) {
	l := logger.FromContext(ctx)

	repoTrip, err := t.trips.Get(ctx, tripID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, NewError(ErrorCodeNotFound, "trip not found")
	case err != nil:
		l.Error("failed to get trip", zap.Stringer("trip_id", tripID), zap.Error(err))
		return nil, NewError(ErrorCodePersistence, "failed to get trip")
	}

	repoParticipants, err := t.participants.List(ctx, repository.ParticipantFilter{TripID: tripID})
	if err != nil {
		l.Error("failed to list participants", zap.Stringer("trip_id", tripID), zap.Error(err))
		return nil, NewError(ErrorCodePersistence, "failed to list participants")
	}

	res := &model.TripDetails{
		Trip:         toModelTrip(repoTrip),
		Participants: make([]*model.Participant, 0, len(repoParticipants)),
	}
	for _, p := range repoParticipants {
		res.Participants = append(res.Participants, toModelParticipant(p))
	}

	return res, nil
}

func toModelTrip(t *repository.Trip) *model.Trip {
	return &model.Trip{
		ID:          t.ID,
		Destination: t.Destination,
		StartsAt:    t.StartsAt,
		EndsAt:      t.EndsAt,
		IsConfirmed: t.IsConfirmed,
		CreatedAt:   t.CreatedAt,
	}
}

func toModelParticipant(p *repository.Participant) *model.Participant {
	return &model.Participant{
		ID:          p.ID,
		TripID:      p.TripID,
		Name:        p.Name,
		Email:       p.Email,
		IsOwner:     p.IsOwner,
		IsConfirmed: p.IsConfirmed,
	}
}

func (t *TripService) WithTripRepo(r repository.TripRepository) *TripService {
	t.trips = r
	return t
}

func (t *TripService) WithParticipantRepo(r repository.ParticipantRepository) *TripService {
	t.participants = r
	return t
}

func (t *TripService) WithNotifier(n notify.Notifier) *TripService {
	t.notifier = n
	return t
}

func (t *TripService) WithPublisher(p events.Publisher) *TripService {
	t.events = p
	return t
}

func (t *TripService) WithClock(now func() time.Time) *TripService {
	t.now = now
	return t
}
