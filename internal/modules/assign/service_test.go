package assign

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medride/internal/config"
	"medride/internal/modules/driver"
	"medride/internal/modules/trip"
	"medride/internal/types"
)

type stubTripSource struct {
	trips []*trip.Trip
	err   error
}

func (s *stubTripSource) ListUnassigned(ctx context.Context, from, to time.Time) ([]*trip.Trip, error) {
	return s.trips, s.err
}

type stubDriverSource struct {
	drivers []*driver.Driver
}

func (s *stubDriverSource) ListActive(ctx context.Context) ([]*driver.Driver, error) {
	return s.drivers, nil
}

type recordingApplier struct {
	failOn  types.ID
	applied []types.ID
}

func (a *recordingApplier) ApplyAssignment(ctx context.Context, cmd trip.ApplyAssignmentCommand) error {
	if cmd.TripID == a.failOn {
		return trip.ErrConflict
	}
	a.applied = append(a.applied, cmd.TripID)
	return nil
}

type memRunStore struct {
	mu   sync.Mutex
	runs map[string][]Proposal
}

func newMemRunStore() *memRunStore {
	return &memRunStore{runs: make(map[string][]Proposal)}
}

func (m *memRunStore) SaveRun(ctx context.Context, runID string, proposals []Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[runID] = proposals
	return nil
}

func (m *memRunStore) GetRun(ctx context.Context, runID string) ([]Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return p, nil
}

func (m *memRunStore) DeleteRun(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, runID)
	return nil
}

func newTestService(trips []*trip.Trip, drivers []*driver.Driver, applier *recordingApplier, store *memRunStore) *Service {
	return NewService(
		&stubTripSource{trips: trips},
		&stubDriverSource{drivers: drivers},
		applier,
		store,
		config.DispatchConfig{DailySoftCap: 5, StaggerMinutes: 30},
	)
}

func TestOptimizeRejectsBadRange(t *testing.T) {
	svc := newTestService(nil, nil, &recordingApplier{}, newMemRunStore())
	from := at(3, 0, 0)
	to := at(2, 0, 0)
	if _, err := svc.Optimize(context.Background(), from, to); !errors.Is(err, ErrBadRange) {
		t.Fatalf("expected ErrBadRange, got %v", err)
	}
	if _, err := svc.Optimize(context.Background(), time.Time{}, to); !errors.Is(err, ErrBadRange) {
		t.Fatalf("expected ErrBadRange for zero from, got %v", err)
	}
}

func TestOptimizeCachesRun(t *testing.T) {
	trips := []*trip.Trip{
		plannerTrip("t1", at(2, 8, 0)),
		plannerTrip("t2", at(2, 9, 0)),
	}
	drivers := []*driver.Driver{plannerDriver("dA", "Ann", "Lee")}
	store := newMemRunStore()
	svc := newTestService(trips, drivers, &recordingApplier{}, store)

	run, err := svc.Optimize(context.Background(), at(1, 0, 0), at(5, 0, 0))
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if run.RunID == "" {
		t.Fatal("empty run id")
	}
	if len(run.Proposals) != 2 {
		t.Fatalf("expected 2 proposals, got %d", len(run.Proposals))
	}
	cached, err := store.GetRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("cached run missing: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("cached %d proposals", len(cached))
	}
}

func TestOptimizeWithNoCandidates(t *testing.T) {
	drivers := []*driver.Driver{plannerDriver("dA", "Ann", "Lee")}
	svc := newTestService(nil, drivers, &recordingApplier{}, newMemRunStore())
	if _, err := svc.Optimize(context.Background(), at(1, 0, 0), at(5, 0, 0)); !errors.Is(err, ErrNoTrips) {
		t.Fatalf("expected ErrNoTrips, got %v", err)
	}
}

func TestApplyUnknownRun(t *testing.T) {
	svc := newTestService(nil, nil, &recordingApplier{}, newMemRunStore())
	if _, err := svc.Apply(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestApplyConsumesRun(t *testing.T) {
	trips := []*trip.Trip{
		plannerTrip("t1", at(2, 8, 0)),
		plannerTrip("t2", at(2, 9, 0)),
	}
	drivers := []*driver.Driver{plannerDriver("dA", "Ann", "Lee")}
	applier := &recordingApplier{}
	store := newMemRunStore()
	svc := newTestService(trips, drivers, applier, store)

	run, err := svc.Optimize(context.Background(), at(1, 0, 0), at(5, 0, 0))
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	res, err := svc.Apply(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Total != 2 || len(res.Applied) != 2 {
		t.Fatalf("applied %d of %d", len(res.Applied), res.Total)
	}
	if len(applier.applied) != 2 {
		t.Fatalf("applier saw %d trips", len(applier.applied))
	}
	if _, err := store.GetRun(context.Background(), run.RunID); !errors.Is(err, ErrRunNotFound) {
		t.Fatal("run should be deleted after a full apply")
	}
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	trips := []*trip.Trip{
		plannerTrip("t1", at(2, 8, 0)),
		plannerTrip("t2", at(2, 9, 0)),
		plannerTrip("t3", at(2, 10, 0)),
	}
	drivers := []*driver.Driver{plannerDriver("dA", "Ann", "Lee")}
	applier := &recordingApplier{failOn: "t2"}
	store := newMemRunStore()
	svc := newTestService(trips, drivers, applier, store)

	run, err := svc.Optimize(context.Background(), at(1, 0, 0), at(5, 0, 0))
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	res, err := svc.Apply(context.Background(), run.RunID)
	if !errors.Is(err, trip.ErrConflict) {
		t.Fatalf("expected the applier's error, got %v", err)
	}
	// The first update stands, the failed one is reported, the third is
	// never attempted.
	if len(res.Applied) != 1 || res.Applied[0].TripID != "t1" {
		t.Fatalf("applied %v", res.Applied)
	}
	if res.FailedTripID != "t2" {
		t.Fatalf("failed trip %s", res.FailedTripID)
	}
	if len(applier.applied) != 1 {
		t.Fatalf("applier saw %v", applier.applied)
	}
	if res.Total != 3 {
		t.Fatalf("total %d", res.Total)
	}
}
