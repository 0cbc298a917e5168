// README: Driver store backed by PostgreSQL; profiles live in the shared users table.
package driver

import (
	"context"
	"errors"

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

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, phone_number, status, vehicle_id
		FROM users
		WHERE id = $1 AND role = 'driver'`, string(id),
	)
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// List returns every profile with role = driver, active first.
func (s *PGStore) List(ctx context.Context) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, first_name, last_name, phone_number, status, vehicle_id
		FROM users
		WHERE role = 'driver'
		ORDER BY status = 'active' DESC, last_name ASC, first_name ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, status Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET status = $1 WHERE id = $2 AND role = 'driver'`,
		string(status), string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*Driver, error) {
	var d Driver
	var vehicleID *string
	if err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.PhoneNumber, &d.Status, &vehicleID); err != nil {
		return nil, err
	}
	if vehicleID != nil {
		v := types.ID(*vehicleID)
		d.VehicleID = &v
	}
	return &d, nil
}
