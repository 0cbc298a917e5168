// README: Dispatch service orchestrates planner runs and sequential write-back.
package assign

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"medride/internal/config"
	"medride/internal/modules/driver"
	"medride/internal/modules/trip"
)

var (
	ErrBadRange    = errors.New("invalid date range")
	ErrRunNotFound = errors.New("proposal run not found or expired")
)

type TripSource interface {
	ListUnassigned(ctx context.Context, from, to time.Time) ([]*trip.Trip, error)
}

type DriverSource interface {
	ListActive(ctx context.Context) ([]*driver.Driver, error)
}

// Applier performs the per-trip write-back; the trip service's
// compare-and-set transition sits behind it.
type Applier interface {
	ApplyAssignment(ctx context.Context, cmd trip.ApplyAssignmentCommand) error
}

type ProposalStore interface {
	SaveRun(ctx context.Context, runID string, proposals []Proposal) error
	GetRun(ctx context.Context, runID string) ([]Proposal, error)
	DeleteRun(ctx context.Context, runID string) error
}

type Service struct {
	trips   TripSource
	drivers DriverSource
	applier Applier
	store   ProposalStore
	cfg     config.DispatchConfig
}

func NewService(trips TripSource, drivers DriverSource, applier Applier, store ProposalStore, cfg config.DispatchConfig) *Service {
	return &Service{trips: trips, drivers: drivers, applier: applier, store: store, cfg: cfg}
}

// Optimize fetches the unassigned trips and the driver roster for the
// window, runs the planner, and caches the proposal set under a fresh run
// id so the dispatcher can apply or discard it from a later request.
func (s *Service) Optimize(ctx context.Context, from, to time.Time) (*Run, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, ErrBadRange
	}
	trips, err := s.trips.ListUnassigned(ctx, from, to)
	if err != nil {
		return nil, err
	}
	drivers, err := s.drivers.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	proposals, err := Plan(trips, drivers, s.cfg)
	if err != nil {
		return nil, err
	}
	runID := newRunID()
	if err := s.store.SaveRun(ctx, runID, proposals); err != nil {
		return nil, err
	}
	return &Run{RunID: runID, Proposals: proposals}, nil
}

// Apply writes a cached proposal run back trip by trip. Updates are
// sequential, not transactional: the first failure stops the loop and is
// returned alongside the result, with earlier updates left in place.
func (s *Service) Apply(ctx context.Context, runID string) (ApplyResult, error) {
	proposals, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return ApplyResult{}, err
	}
	res := ApplyResult{Total: len(proposals)}
	for _, p := range proposals {
		err := s.applier.ApplyAssignment(ctx, trip.ApplyAssignmentCommand{
			TripID:     p.TripID,
			DriverID:   p.DriverID,
			DriverName: p.DriverName,
			PickupTime: p.SuggestedTime,
		})
		if err != nil {
			res.FailedTripID = p.TripID
			return res, err
		}
		res.Applied = append(res.Applied, p)
	}
	_ = s.store.DeleteRun(ctx, runID)
	return res, nil
}

// Discard drops a cached run without applying it.
func (s *Service) Discard(ctx context.Context, runID string) error {
	return s.store.DeleteRun(ctx, runID)
}

func newRunID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
