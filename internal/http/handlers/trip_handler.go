// README: Trip handlers for the dispatcher console and driver endpoints.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medride/internal/http/middleware"
	"medride/internal/maps"
	"medride/internal/modules/trip"
	"medride/internal/types"
)

type TripHandler struct {
	trips  *trip.Service
	routes *maps.RouteService
}

func NewTripHandler(trips *trip.Service, routes *maps.RouteService) *TripHandler {
	return &TripHandler{trips: trips, routes: routes}
}

type tripResponse struct {
	ID                 types.ID    `json:"id"`
	Status             trip.Status `json:"status"`
	StatusVersion      int         `json:"status_version"`
	PickupTime         time.Time   `json:"pickup_time"`
	PickupAddress      string      `json:"pickup_address"`
	DestinationAddress string      `json:"destination_address"`
	Price              types.Money `json:"price"`
	DriverID           *types.ID   `json:"driver_id,omitempty"`
	DriverName         *string     `json:"driver_name,omitempty"`
	FacilityID         *types.ID   `json:"facility_id,omitempty"`
	UserID             *types.ID   `json:"user_id,omitempty"`
	ManagedClientID    *types.ID   `json:"managed_client_id,omitempty"`
	CancellationReason *string     `json:"cancellation_reason,omitempty"`
	PaymentStatus      *string     `json:"payment_status,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

func toTripResponse(t *trip.Trip) tripResponse {
	return tripResponse{
		ID:                 t.ID,
		Status:             t.Status,
		StatusVersion:      t.StatusVersion,
		PickupTime:         t.PickupTime,
		PickupAddress:      t.PickupAddress,
		DestinationAddress: t.DestinationAddress,
		Price:              t.Price,
		DriverID:           t.DriverID,
		DriverName:         t.DriverName,
		FacilityID:         t.FacilityID,
		UserID:             t.UserID,
		ManagedClientID:    t.ManagedClientID,
		CancellationReason: t.CancellationReason,
		PaymentStatus:      t.PaymentStatus,
		CompletedAt:        t.CompletedAt,
		CreatedAt:          t.CreatedAt,
	}
}

func toTripResponses(ts []*trip.Trip) []tripResponse {
	out := make([]tripResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTripResponse(t))
	}
	return out
}

type approveReq struct {
	ChargeCard bool `json:"charge_card"`
}

func (h *TripHandler) Approve(c *gin.Context) {
	var req approveReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	err := h.trips.Approve(c.Request.Context(), trip.ApproveCommand{
		TripID:       types.ID(c.Param("id")),
		DispatcherID: types.ID(middleware.CallerUID(c)),
		ChargeCard:   req.ChargeCard,
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type rejectReq struct {
	Reason string `json:"reason"`
}

func (h *TripHandler) Reject(c *gin.Context) {
	var req rejectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.trips.Reject(c.Request.Context(), trip.RejectCommand{
		TripID:       types.ID(c.Param("id")),
		DispatcherID: types.ID(middleware.CallerUID(c)),
		Reason:       req.Reason,
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(trip.StatusCancelled)})
}

type assignReq struct {
	DriverID          string `json:"driver_id"`
	DriverName        string `json:"driver_name"`
	RequireAcceptance bool   `json:"require_acceptance"`
}

func (h *TripHandler) Assign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.trips.AssignDriver(c.Request.Context(), trip.AssignCommand{
		TripID:            types.ID(c.Param("id")),
		DriverID:          types.ID(req.DriverID),
		DriverName:        req.DriverName,
		RequireAcceptance: req.RequireAcceptance,
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TripHandler) Complete(c *gin.Context) {
	err := h.trips.Complete(c.Request.Context(), trip.CompleteCommand{
		TripID:    types.ID(c.Param("id")),
		ActorType: "dispatcher",
		ActorID:   types.ID(middleware.CallerUID(c)),
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(trip.StatusCompleted)})
}

// Accept confirms an assignment; the acting driver comes from the token,
// never the request body.
func (h *TripHandler) Accept(c *gin.Context) {
	err := h.trips.Accept(c.Request.Context(), trip.AcceptCommand{
		TripID:   types.ID(c.Param("id")),
		DriverID: types.ID(middleware.CallerUID(c)),
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(trip.StatusInProgress)})
}

func (h *TripHandler) Decline(c *gin.Context) {
	err := h.trips.Decline(c.Request.Context(), trip.DeclineCommand{
		TripID:   types.ID(c.Param("id")),
		DriverID: types.ID(middleware.CallerUID(c)),
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(trip.StatusRejected)})
}

func (h *TripHandler) Get(c *gin.Context) {
	t, err := h.trips.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(t))
}

// List serves the console's trip views. With view=buckets the window is
// split by ownership kind; otherwise a flat list is returned.
func (h *TripHandler) List(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	filter := trip.RangeFilter{From: from, To: to}
	if s := c.Query("status"); s != "" {
		filter.Statuses = []trip.Status{trip.Status(s)}
	}
	if c.Query("unassigned") == "true" {
		filter.Unassigned = true
	}

	if c.Query("view") == "buckets" {
		b, err := h.trips.ListBuckets(c.Request.Context(), filter)
		if err != nil {
			writeTripError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"facility":     toTripResponses(b.Facility),
			"individual":   toTripResponses(b.Individual),
			"unclassified": toTripResponses(b.Unclassified),
		})
		return
	}

	ts, err := h.trips.List(c.Request.Context(), filter)
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": toTripResponses(ts)})
}

// Route returns the driving estimate between a trip's stored addresses.
func (h *TripHandler) Route(c *gin.Context) {
	t, err := h.trips.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeTripError(c, err)
		return
	}
	preview, err := h.routes.Preview(c.Request.Context(), t.PickupAddress, t.DestinationAddress)
	if errors.Is(err, maps.ErrNotConfigured) {
		writeError(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		writeError(c, http.StatusBadGateway, err.Error())
		return
	}
	c.JSON(http.StatusOK, preview)
}

// parseWindow reads the from/to query params, accepting RFC3339 or a bare
// date. A missing window defaults to the coming two weeks.
func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from, to := now.AddDate(0, 0, -1), now.AddDate(0, 0, 14)
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = parseTimeParam(v); err != nil {
			writeError(c, http.StatusBadRequest, "invalid from")
			return time.Time{}, time.Time{}, false
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = parseTimeParam(v); err != nil {
			writeError(c, http.StatusBadRequest, "invalid to")
			return time.Time{}, time.Time{}, false
		}
	}
	return from, to, true
}

func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
