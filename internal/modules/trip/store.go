// README: Trip store backed by PostgreSQL.
package trip

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medride/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const tripColumns = `
	id, status, status_version, pickup_time, pickup_address, destination_address,
	price_cents, currency, driver_id, driver_name, facility_id, user_id,
	managed_client_id, cancellation_reason, rejected_by_driver_id, payment_status,
	completed_at, charged_at, verified_at, created_at`

func (s *PGStore) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, status, status_version, pickup_time, pickup_address, destination_address,
			price_cents, currency, driver_id, driver_name, facility_id, user_id,
			managed_client_id, payment_status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15
		)`,
		string(t.ID),
		string(t.Status),
		t.StatusVersion,
		t.PickupTime,
		t.PickupAddress,
		t.DestinationAddress,
		t.Price.Amount,
		t.Price.Currency,
		idPtr(t.DriverID),
		t.DriverName,
		idPtr(t.FacilityID),
		idPtr(t.UserID),
		idPtr(t.ManagedClientID),
		t.PaymentStatus,
		t.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, string(id))
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *PGStore) ListRange(ctx context.Context, f RangeFilter) ([]*Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE pickup_time >= $1 AND pickup_time <= $2`
	args := []any{f.From, f.To}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, statuses)
		query += ` AND status = ANY($3)`
	}
	if f.Unassigned {
		query += ` AND driver_id IS NULL`
	}
	query += ` ORDER BY pickup_time ASC, id ASC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateStatus performs the optimistic-lock write: the row only changes when
// both the status and the version still match what the caller read.
func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, set Fields) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = $1,
		    status_version = status_version + 1,
		    driver_id = CASE WHEN $5::bool THEN NULL ELSE COALESCE($6::text, driver_id) END,
		    driver_name = CASE WHEN $5::bool THEN NULL ELSE COALESCE($7::text, driver_name) END,
		    pickup_time = COALESCE($8::timestamptz, pickup_time),
		    cancellation_reason = COALESCE($9::text, cancellation_reason),
		    rejected_by_driver_id = COALESCE($10::text, rejected_by_driver_id),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
		    charged_at = CASE WHEN $1 = 'paid_in_progress' THEN NOW() ELSE charged_at END
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to),
		string(id),
		string(from),
		version,
		set.ClearDriver,
		idPtr(set.DriverID),
		set.DriverName,
		set.PickupTime,
		set.CancellationReason,
		idPtr(set.RejectedByDriverID),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trip_state_events (
			trip_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.TripID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		idPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*Trip, error) {
	var t Trip
	var driverID, facilityID, userID, managedClientID, rejectedBy sql.NullString
	var driverName, cancelReason, paymentStatus sql.NullString
	var completedAt, chargedAt, verifiedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.Status, &t.StatusVersion, &t.PickupTime, &t.PickupAddress, &t.DestinationAddress,
		&t.Price.Amount, &t.Price.Currency, &driverID, &driverName, &facilityID, &userID,
		&managedClientID, &cancelReason, &rejectedBy, &paymentStatus,
		&completedAt, &chargedAt, &verifiedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.DriverID = toIDPtr(driverID)
	t.FacilityID = toIDPtr(facilityID)
	t.UserID = toIDPtr(userID)
	t.ManagedClientID = toIDPtr(managedClientID)
	t.RejectedByDriverID = toIDPtr(rejectedBy)
	if driverName.Valid {
		t.DriverName = &driverName.String
	}
	if cancelReason.Valid {
		t.CancellationReason = &cancelReason.String
	}
	if paymentStatus.Valid {
		t.PaymentStatus = &paymentStatus.String
	}
	t.CompletedAt = toTimePtr(completedAt)
	t.ChargedAt = toTimePtr(chargedAt)
	t.VerifiedAt = toTimePtr(verifiedAt)
	return &t, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toIDPtr(v sql.NullString) *types.ID {
	if !v.Valid {
		return nil
	}
	id := types.ID(v.String)
	return &id
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
