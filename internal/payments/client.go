// README: HTTP client for the external payment service.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"medride/internal/modules/trip"
)

// Client charges cards through the external payment service. It satisfies
// the trip service's Charger interface; errors surface to the caller so a
// failed charge can be recorded against the trip.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type chargeRequest struct {
	TripID      string `json:"trip_id"`
	UserID      string `json:"user_id,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type chargeResponse struct {
	ChargeID string `json:"charge_id"`
	Error    string `json:"error,omitempty"`
}

func (c *Client) Charge(ctx context.Context, t *trip.Trip) error {
	if c.baseURL == "" {
		return fmt.Errorf("payment service not configured")
	}
	payload := chargeRequest{
		TripID:      string(t.ID),
		AmountCents: t.Price.Amount,
		Currency:    t.Price.Currency,
		Description: fmt.Sprintf("Trip %s on %s", t.ID, t.PickupTime.Format("2006-01-02")),
	}
	if t.UserID != nil {
		payload.UserID = string(*t.UserID)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payment service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	var out chargeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if out.Error != "" {
			return fmt.Errorf("charge declined: %s", out.Error)
		}
		return fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}
	return nil
}
