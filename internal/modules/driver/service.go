// README: Driver service exposes roster listing and status changes.
package driver

import (
	"context"
	"errors"

	"medride/internal/types"
)

var (
	ErrNotFound   = errors.New("driver not found")
	ErrValidation = errors.New("invalid request")
)

type Store interface {
	Get(ctx context.Context, id types.ID) (*Driver, error)
	List(ctx context.Context) ([]*Driver, error)
	UpdateStatus(ctx context.Context, id types.ID, status Status) (bool, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Driver, error) {
	return s.store.List(ctx)
}

// ListActive returns the roster the optimizer assigns from.
func (s *Service) ListActive(ctx context.Context) ([]*Driver, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*Driver, 0, len(all))
	for _, d := range all {
		if d.Status == StatusActive || d.Status == StatusOnTrip {
			active = append(active, d)
		}
	}
	return active, nil
}

func (s *Service) SetStatus(ctx context.Context, id types.ID, status Status) error {
	if !ValidStatus(status) {
		return ErrValidation
	}
	ok, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
