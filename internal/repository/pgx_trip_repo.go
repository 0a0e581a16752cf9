package repository

import (
	"context"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/yakoovad/planner/internal/db"
	"time"
)

type Trip struct {
	ID          uuid.UUID `db:"id"`
	Destination string    `db:"destination"`
	StartsAt    time.Time `db:"starts_at"`
	EndsAt      time.Time `db:"ends_at"`
	IsConfirmed bool      `db:"is_confirmed"`
	CreatedAt   time.Time `db:"created_at"`
}

type TripRepository interface {
	Create(ctx context.Context, trip *Trip) error
	Get(ctx context.Context, id uuid.UUID) (*Trip, error)
	SetConfirmed(ctx context.Context, id uuid.UUID) error
}

type pgxTripRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTripRepository(pool *pgxpool.Pool) TripRepository {
	return &pgxTripRepository{pool: pool}
}

// Create inserts trip and fills trip.CreatedAt.
func (p *pgxTripRepository) Create(ctx context.Context, trip *Trip) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("trips", "id", "destination", "starts_at", "ends_at", "is_confirmed"),
		im.Values(
			psql.Arg(trip.ID),
			psql.Arg(trip.Destination),
			psql.Arg(trip.StartsAt),
			psql.Arg(trip.EndsAt),
			psql.Arg(trip.IsConfirmed),
		),
		im.Returning("created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if err = e.QueryRow(ctx, sql, args...).Scan(&trip.CreatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (p *pgxTripRepository) Get(ctx context.Context, id uuid.UUID) (*Trip, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "destination", "starts_at", "ends_at", "is_confirmed", "created_at"),
		sm.From("trips"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	var (
		trip  = &Trip{}
		rawID pgtype.UUID
	)
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&rawID,
		&trip.Destination,
		&trip.StartsAt,
		&trip.EndsAt,
		&trip.IsConfirmed,
		&trip.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	trip.ID = uuid.UUID(rawID.Bytes)

	return trip, nil
}

// SetConfirmed flips is_confirmed only while it is still false.
// It returns ErrNoChange when no row was updated: the trip is already
// confirmed or does not exist.
func (p *pgxTripRepository) SetConfirmed(ctx context.Context, id uuid.UUID) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("trips"),
		um.SetCol("is_confirmed").ToArg(true),
		um.Where(
			psql.Quote("id").EQ(psql.Arg(id)).
				And(psql.Quote("is_confirmed").EQ(psql.Arg(false))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	tag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNoChange
	}
	return nil
}
