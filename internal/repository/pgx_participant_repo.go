package repository

import (
	"context"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/planner/internal/db"
)

type Participant struct {
	ID          uuid.UUID `db:"id"`
	TripID      uuid.UUID `db:"trip_id"`
	Name        *string   `db:"name"`
	Email       string    `db:"email"`
	IsOwner     bool      `db:"is_owner"`
	IsConfirmed bool      `db:"is_confirmed"`
}

// ParticipantFilter selects participants of one trip. A nil IsOwner matches
// owner and invitees alike.
type ParticipantFilter struct {
	TripID  uuid.UUID
	IsOwner *bool
}

type ParticipantRepository interface {
	CreateMany(ctx context.Context, participants []*Participant) error
	List(ctx context.Context, filter ParticipantFilter) ([]*Participant, error)
}

type pgxParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewPgxParticipantRepository(pool *pgxpool.Pool) ParticipantRepository {
	return &pgxParticipantRepository{pool: pool}
}

// CreateMany inserts all participants with a single statement.
func (p *pgxParticipantRepository) CreateMany(ctx context.Context, participants []*Participant) error {
	if len(participants) == 0 {
		return nil
	}

	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("participants", "id", "trip_id", "name", "email", "is_owner", "is_confirmed"),
	)

	for _, pt := range participants {
		q.Apply(im.Values(
			psql.Arg(pt.ID),
			psql.Arg(pt.TripID),
			psql.Arg(pt.Name),
			psql.Arg(pt.Email),
			psql.Arg(pt.IsOwner),
			psql.Arg(pt.IsConfirmed),
		))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

// List returns the owner first, then invitees ordered by email.
func (p *pgxParticipantRepository) List(ctx context.Context, filter ParticipantFilter) ([]*Participant, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "trip_id", "name", "email", "is_owner", "is_confirmed"),
		sm.From("participants"),
		sm.Where(psql.Quote("trip_id").EQ(psql.Arg(filter.TripID))),
		sm.OrderBy(psql.Quote("is_owner")).Desc(),
		sm.OrderBy(psql.Quote("email")).Asc(),
	)

	if filter.IsOwner != nil {
		q.Apply(sm.Where(psql.Quote("is_owner").EQ(psql.Arg(*filter.IsOwner))))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Participant, error) {
		var (
			pt             = &Participant{}
			rawID, rawTrip pgtype.UUID
		)
		if err := row.Scan(&rawID, &rawTrip, &pt.Name, &pt.Email, &pt.IsOwner, &pt.IsConfirmed); err != nil {
			return nil, err
		}
		pt.ID = uuid.UUID(rawID.Bytes)
		pt.TripID = uuid.UUID(rawTrip.Bytes)
		return pt, nil
	})
}
