// README: Billing store backed by PostgreSQL, reusing the trips table.
package billing

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

// GetPaymentStatus treats a NULL payment_status as UNPAID so callers never
// see an empty status.
func (s *PGStore) GetPaymentStatus(ctx context.Context, tripID types.ID) (PaymentStatus, error) {
	var status sql.NullString
	err := s.db.QueryRow(ctx,
		`SELECT payment_status FROM trips WHERE id = $1`,
		string(tripID),
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !status.Valid {
		return StatusUnpaid, nil
	}
	return PaymentStatus(status.String), nil
}

// SetPaymentStatus is the optimistic-lock write for billing: the row only
// changes when the payment_status still matches what the caller read.
func (s *PGStore) SetPaymentStatus(ctx context.Context, tripID types.ID, from, to PaymentStatus, stampVerified bool) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET payment_status = $1,
		    verified_at = CASE WHEN $4::bool THEN NOW() ELSE verified_at END
		WHERE id = $2 AND COALESCE(payment_status, 'UNPAID') = $3`,
		string(to),
		string(tripID),
		string(from),
		stampVerified,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) ListFacilityMonth(ctx context.Context, facilityID types.ID, from, to time.Time) ([]StatementLine, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, pickup_time, pickup_address, destination_address,
		       price_cents, currency, COALESCE(payment_status, 'UNPAID')
		FROM trips
		WHERE facility_id = $1
		  AND status = 'completed'
		  AND pickup_time >= $2 AND pickup_time < $3
		ORDER BY pickup_time ASC, id ASC`,
		string(facilityID), from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatementLine
	for rows.Next() {
		var l StatementLine
		if err := rows.Scan(
			&l.TripID, &l.PickupTime, &l.PickupAddress, &l.Destination,
			&l.Price.Amount, &l.Price.Currency, &l.PaymentStatus,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
