// README: Billing payment statuses and the facility statement view.
package billing

import (
	"time"

	"medride/internal/types"
)

// PaymentStatus values match the strings the console renders verbatim.
type PaymentStatus string

const (
	StatusPaid           PaymentStatus = "PAID"
	StatusUnpaid         PaymentStatus = "UNPAID"
	StatusProcessing     PaymentStatus = "PROCESSING PAYMENT"
	StatusCheckPending   PaymentStatus = "PAID WITH CHECK (BEING VERIFIED)"
	StatusCheckVerified  PaymentStatus = "PAID WITH CHECK - VERIFIED"
	StatusNeedsAttention PaymentStatus = "NEEDS ATTENTION - RETRY PAYMENT"
)

// StatementLine is one completed trip on a facility's monthly invoice.
type StatementLine struct {
	TripID        types.ID      `json:"trip_id"`
	PickupTime    time.Time     `json:"pickup_time"`
	PickupAddress string        `json:"pickup_address"`
	Destination   string        `json:"destination_address"`
	Price         types.Money   `json:"price"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// Statement is a facility's invoice summary for one month.
type Statement struct {
	FacilityID types.ID        `json:"facility_id"`
	Month      string          `json:"month"`
	Lines      []StatementLine `json:"lines"`
	Total      types.Money     `json:"total"`
}
