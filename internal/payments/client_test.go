package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medride/internal/modules/trip"
	"medride/internal/types"
)

func chargeableTrip() *trip.Trip {
	uid := types.ID("user1")
	return &trip.Trip{
		ID:         "t1",
		Status:     trip.StatusApprovedPendingPayment,
		PickupTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Price:      types.Money{Amount: 4500, Currency: "USD"},
		UserID:     &uid,
	}
}

func TestChargeSuccess(t *testing.T) {
	var got chargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/charges" {
			t.Errorf("path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(chargeResponse{ChargeID: "ch_1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Charge(context.Background(), chargeableTrip()); err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if got.TripID != "t1" || got.AmountCents != 4500 || got.UserID != "user1" {
		t.Fatalf("request payload %+v", got)
	}
}

func TestChargeDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(chargeResponse{Error: "card expired"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Charge(context.Background(), chargeableTrip())
	if err == nil || !strings.Contains(err.Error(), "card expired") {
		t.Fatalf("expected decline reason, got %v", err)
	}
}

func TestChargeUnconfigured(t *testing.T) {
	c := NewClient("")
	if err := c.Charge(context.Background(), chargeableTrip()); err == nil {
		t.Fatal("expected an error with no base URL")
	}
}
