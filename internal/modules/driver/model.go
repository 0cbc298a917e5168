// README: Driver profile and status definitions.
package driver

import "medride/internal/types"

type Status string

const (
	StatusActive              Status = "active"
	StatusInactive            Status = "inactive"
	StatusOnTrip              Status = "on_trip"
	StatusPendingVerification Status = "pending_verification"
)

type Driver struct {
	ID          types.ID
	FirstName   string
	LastName    string
	PhoneNumber string
	Status      Status
	VehicleID   *types.ID
}

// FullName is the denormalized display name written onto assigned trips.
func (d Driver) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusOnTrip, StatusPendingVerification:
		return true
	}
	return false
}
