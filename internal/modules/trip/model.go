// README: Trip aggregate, status definitions, and ownership classification.
package trip

import (
	"time"

	"medride/internal/types"
)

type Status string

const (
	StatusNone                   Status = "none"
	StatusPending                Status = "pending"
	StatusUpcoming               Status = "upcoming"
	StatusAwaitingAcceptance     Status = "awaiting_driver_acceptance"
	StatusInProgress             Status = "in_progress"
	StatusCompleted              Status = "completed"
	StatusCancelled              Status = "cancelled"
	StatusRejected               Status = "rejected"
	StatusApprovedPendingPayment Status = "approved_pending_payment"
	StatusPaidInProgress         Status = "paid_in_progress"
	StatusPaymentFailed          Status = "payment_failed"
)

// Kind classifies who owns a trip. Facility trips carry a facility_id,
// individual trips a user_id; rows violating that invariant are surfaced
// as unclassified rather than dropped.
type Kind string

const (
	KindFacility     Kind = "facility"
	KindIndividual   Kind = "individual"
	KindUnclassified Kind = "unclassified"
)

type Trip struct {
	ID                 types.ID
	Status             Status
	StatusVersion      int
	PickupTime         time.Time
	PickupAddress      string
	DestinationAddress string
	Price              types.Money
	DriverID           *types.ID
	DriverName         *string
	FacilityID         *types.ID
	UserID             *types.ID
	ManagedClientID    *types.ID
	CancellationReason *string
	RejectedByDriverID *types.ID
	PaymentStatus      *string
	CompletedAt        *time.Time
	ChargedAt          *time.Time
	VerifiedAt         *time.Time
	CreatedAt          time.Time
}

// Event is one row in the trip state audit log.
type Event struct {
	ID         int64
	TripID     types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the trip lifecycle as code. The upcoming
// self-loop covers driver assignment, which changes fields but not status.
var AllowedTransitions = map[Status][]Status{
	StatusPending:                {StatusUpcoming, StatusApprovedPendingPayment, StatusCancelled},
	StatusUpcoming:               {StatusUpcoming, StatusAwaitingAcceptance, StatusInProgress, StatusCompleted, StatusCancelled},
	StatusAwaitingAcceptance:     {StatusInProgress, StatusRejected, StatusCancelled},
	StatusInProgress:             {StatusCompleted, StatusCancelled},
	StatusApprovedPendingPayment: {StatusPaidInProgress, StatusPaymentFailed, StatusCancelled},
	StatusPaidInProgress:         {StatusCompleted, StatusCancelled},
	StatusPaymentFailed:          {StatusPaidInProgress, StatusUpcoming, StatusCancelled},
	StatusRejected:               {StatusUpcoming, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(AllowedTransitions[s]) == 0
}

// Classify applies the ownership invariant: exactly one of facility_id or
// user_id must be set.
func Classify(t *Trip) Kind {
	switch {
	case t.FacilityID != nil && t.UserID == nil:
		return KindFacility
	case t.FacilityID == nil && t.UserID != nil:
		return KindIndividual
	default:
		return KindUnclassified
	}
}
