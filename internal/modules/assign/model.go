// README: Assignment proposals produced by the dispatch optimizer.
package assign

import (
	"time"

	"medride/internal/types"
)

// Proposal pairs one unassigned trip with a driver and a suggested pickup
// time. Proposals are transient: they live in the proposal cache until
// applied or expired, and are never written to the trips table themselves.
type Proposal struct {
	TripID         types.ID  `json:"trip_id"`
	DriverID       types.ID  `json:"driver_id"`
	DriverName     string    `json:"driver_name"`
	TripDate       string    `json:"trip_date"`
	OriginalTime   time.Time `json:"original_time"`
	SuggestedTime  time.Time `json:"suggested_time"`
	Reasoning      string    `json:"reasoning"`
	TimeDifference string    `json:"time_difference"`
}

// Run is one optimizer invocation: an opaque id the console holds on to
// plus the proposal set it can apply or discard.
type Run struct {
	RunID     string     `json:"run_id"`
	Proposals []Proposal `json:"proposals"`
}

// ApplyResult reports how far a sequential apply got. Earlier writes stand
// when a later one fails; partial application is an expected outcome, shown
// to the dispatcher as "N of M assignments applied".
type ApplyResult struct {
	Total        int        `json:"total"`
	Applied      []Proposal `json:"applied"`
	FailedTripID types.ID   `json:"failed_trip_id,omitempty"`
}

const dateLayout = "2006-01-02"
