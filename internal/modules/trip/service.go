// README: Trip service implements dispatcher/driver state transitions and persistence.
package trip

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"medride/internal/types"
)

var (
	ErrValidation   = errors.New("invalid request")
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("trip not found")
	ErrConflict     = errors.New("trip state conflict")
	ErrUpstream     = errors.New("upstream failure")
)

// Fields carries the column updates applied alongside a status change.
// Nil pointers leave the stored value untouched; ClearDriver nulls the
// driver columns so a rejected trip can be reassigned.
type Fields struct {
	DriverID           *types.ID
	DriverName         *string
	PickupTime         *time.Time
	CancellationReason *string
	RejectedByDriverID *types.ID
	ClearDriver        bool
}

// RangeFilter selects trips by pickup-time window, status set, and
// assignment state. Unassigned=true restricts to trips with no driver.
type RangeFilter struct {
	From       time.Time
	To         time.Time
	Statuses   []Status
	Unassigned bool
}

type Store interface {
	Get(ctx context.Context, id types.ID) (*Trip, error)
	ListRange(ctx context.Context, f RangeFilter) ([]*Trip, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, set Fields) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

// Charger is the external payment collaborator invoked on approval of
// card-charged individual trips.
type Charger interface {
	Charge(ctx context.Context, t *Trip) error
}

type Service struct {
	store   Store
	charger Charger
}

func NewService(store Store, charger Charger) *Service {
	return &Service{store: store, charger: charger}
}

type ApproveCommand struct {
	TripID       types.ID
	DispatcherID types.ID
	ChargeCard   bool
}

type RejectCommand struct {
	TripID       types.ID
	DispatcherID types.ID
	Reason       string
}

type AssignCommand struct {
	TripID            types.ID
	DriverID          types.ID
	DriverName        string
	RequireAcceptance bool
}

type AcceptCommand struct {
	TripID   types.ID
	DriverID types.ID
}

type DeclineCommand struct {
	TripID   types.ID
	DriverID types.ID
}

type CompleteCommand struct {
	TripID    types.ID
	ActorType string
	ActorID   types.ID
}

type ApplyAssignmentCommand struct {
	TripID     types.ID
	DriverID   types.ID
	DriverName string
	PickupTime time.Time
}

// Approve moves a pending trip to upcoming. Individually booked trips with
// a card charge requested go through approved_pending_payment instead; a
// charge failure parks the trip in payment_failed but does not undo the
// approval.
func (s *Service) Approve(ctx context.Context, cmd ApproveCommand) error {
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	target := StatusUpcoming
	if cmd.ChargeCard && Classify(t) == KindIndividual {
		target = StatusApprovedPendingPayment
	}
	if !CanTransition(t.Status, target) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, target, t.StatusVersion, Fields{})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TripID:     t.ID,
		FromStatus: t.Status,
		ToStatus:   target,
		ActorType:  "dispatcher",
		ActorID:    &cmd.DispatcherID,
		CreatedAt:  time.Now(),
	})
	if target != StatusApprovedPendingPayment {
		return nil
	}
	return s.chargeApproved(ctx, t.ID, cmd.DispatcherID)
}

// chargeApproved runs the external charge for a freshly approved trip and
// records the outcome as a payment sub-state transition.
func (s *Service) chargeApproved(ctx context.Context, id, dispatcherID types.ID) error {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.charger == nil {
		return s.settlePayment(ctx, t, StatusPaymentFailed, dispatcherID, fmt.Errorf("%w: no payment collaborator configured", ErrUpstream))
	}
	if err := s.charger.Charge(ctx, t); err != nil {
		return s.settlePayment(ctx, t, StatusPaymentFailed, dispatcherID, fmt.Errorf("%w: %v", ErrUpstream, err))
	}
	return s.settlePayment(ctx, t, StatusPaidInProgress, dispatcherID, nil)
}

func (s *Service) settlePayment(ctx context.Context, t *Trip, target Status, dispatcherID types.ID, chargeErr error) error {
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, target, t.StatusVersion, Fields{})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TripID:     t.ID,
		FromStatus: t.Status,
		ToStatus:   target,
		ActorType:  "system",
		ActorID:    &dispatcherID,
		CreatedAt:  time.Now(),
	})
	return chargeErr
}

// Reject cancels a trip. The reason is mandatory; without one nothing is
// read or written.
func (s *Service) Reject(ctx context.Context, cmd RejectCommand) error {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return ErrValidation
	}
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if !CanTransition(t.Status, StatusCancelled) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, StatusCancelled, t.StatusVersion, Fields{
		CancellationReason: &reason,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TripID:     t.ID,
		FromStatus: t.Status,
		ToStatus:   StatusCancelled,
		ActorType:  "dispatcher",
		ActorID:    &cmd.DispatcherID,
		CreatedAt:  time.Now(),
	})
	return nil
}

// AssignDriver attaches a driver to an upcoming, unassigned trip. With
// RequireAcceptance the trip waits for the driver to confirm; otherwise it
// stays upcoming with the driver fields set.
func (s *Service) AssignDriver(ctx context.Context, cmd AssignCommand) error {
	if cmd.DriverID == "" {
		return ErrValidation
	}
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.Status != StatusUpcoming {
		return ErrInvalidState
	}
	if t.DriverID != nil {
		return ErrInvalidState
	}
	target := StatusUpcoming
	if cmd.RequireAcceptance {
		target = StatusAwaitingAcceptance
	}
	name := cmd.DriverName
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, target, t.StatusVersion, Fields{
		DriverID:   &cmd.DriverID,
		DriverName: &name,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TripID:     t.ID,
		FromStatus: t.Status,
		ToStatus:   target,
		ActorType:  "dispatcher",
		ActorID:    &cmd.DriverID,
		CreatedAt:  time.Now(),
	})
	return nil
}

// Accept confirms an assignment awaiting the driver's acceptance.
func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) error {
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.Status != StatusAwaitingAcceptance {
		return ErrInvalidState
	}
	if t.DriverID == nil || *t.DriverID != cmd.DriverID {
		return ErrValidation
	}
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, StatusInProgress, t.StatusVersion, Fields{})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TripID:     t.ID,
		FromStatus: t.Status,
		ToStatus:   StatusInProgress,
		ActorType:  "driver",
		ActorID:    &cmd.DriverID,
		CreatedAt:  time.Now(),
	})
	return nil
}

// Decline records a driver's refusal and frees the trip for reassignment.
func (s *Service) Decline(ctx context.Context, cmd DeclineCommand) error {
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.Status != StatusAwaitingAcceptance {
		return ErrInvalidState
	}
	if t.DriverID == nil || *t.DriverID != cmd.DriverID {
		return ErrValidation
	}
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, StatusRejected, t.StatusVersion, Fields{
		RejectedByDriverID: &cmd.DriverID,
		ClearDriver:        true,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TripID:     t.ID,
		FromStatus: t.Status,
		ToStatus:   StatusRejected,
		ActorType:  "driver",
		ActorID:    &cmd.DriverID,
		CreatedAt:  time.Now(),
	})
	return nil
}

// Complete finishes a trip from upcoming, in_progress, or paid_in_progress.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) error {
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if !CanTransition(t.Status, StatusCompleted) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, StatusCompleted, t.StatusVersion, Fields{})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TripID:     t.ID,
		FromStatus: t.Status,
		ToStatus:   StatusCompleted,
		ActorType:  cmd.ActorType,
		ActorID:    &cmd.ActorID,
		CreatedAt:  time.Now(),
	})
	return nil
}

// ApplyAssignment is the optimizer write-back: driver, denormalized driver
// name, suggested pickup time, status upcoming. The compare-and-set on the
// observed prior state rejects trips another dispatcher touched in between.
func (s *Service) ApplyAssignment(ctx context.Context, cmd ApplyAssignmentCommand) error {
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.Status != StatusPending && t.Status != StatusUpcoming {
		return ErrInvalidState
	}
	if t.DriverID != nil {
		return ErrConflict
	}
	name := cmd.DriverName
	pickup := cmd.PickupTime
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, StatusUpcoming, t.StatusVersion, Fields{
		DriverID:   &cmd.DriverID,
		DriverName: &name,
		PickupTime: &pickup,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TripID:     t.ID,
		FromStatus: t.Status,
		ToStatus:   StatusUpcoming,
		ActorType:  "optimizer",
		ActorID:    &cmd.DriverID,
		CreatedAt:  time.Now(),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Trip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f RangeFilter) ([]*Trip, error) {
	return s.store.ListRange(ctx, f)
}

// ListUnassigned returns the optimizer's input set: pending/upcoming trips
// in the window with no driver attached.
func (s *Service) ListUnassigned(ctx context.Context, from, to time.Time) ([]*Trip, error) {
	return s.store.ListRange(ctx, RangeFilter{
		From:       from,
		To:         to,
		Statuses:   []Status{StatusPending, StatusUpcoming},
		Unassigned: true,
	})
}

// Buckets groups trips by ownership kind for the console views.
type Buckets struct {
	Facility     []*Trip
	Individual   []*Trip
	Unclassified []*Trip
}

// ListBuckets classifies a window of trips. Rows violating the ownership
// invariant land in the unclassified bucket and are logged, not dropped.
func (s *Service) ListBuckets(ctx context.Context, f RangeFilter) (Buckets, error) {
	trips, err := s.store.ListRange(ctx, f)
	if err != nil {
		return Buckets{}, err
	}
	var b Buckets
	for _, t := range trips {
		switch Classify(t) {
		case KindFacility:
			b.Facility = append(b.Facility, t)
		case KindIndividual:
			b.Individual = append(b.Individual, t)
		default:
			log.Printf("trip %s has inconsistent ownership references", t.ID)
			b.Unclassified = append(b.Unclassified, t)
		}
	}
	return b, nil
}
