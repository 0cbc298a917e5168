// README: Billing service implements check verification, payment flagging,
// and facility statements.
package billing

import (
	"context"
	"errors"
	"time"

	"medride/internal/types"
)

var (
	ErrNotFound     = errors.New("trip not found")
	ErrInvalidState = errors.New("payment status does not allow this operation")
	ErrConflict     = errors.New("payment status changed concurrently")
	ErrValidation   = errors.New("invalid request")
)

type Store interface {
	GetPaymentStatus(ctx context.Context, tripID types.ID) (PaymentStatus, error)
	SetPaymentStatus(ctx context.Context, tripID types.ID, from, to PaymentStatus, stampVerified bool) (bool, error)
	ListFacilityMonth(ctx context.Context, facilityID types.ID, from, to time.Time) ([]StatementLine, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// VerifyCheckPayment marks a check payment as verified and stamps
// verified_at. The compare-and-set on the prior status rejects trips whose
// payment moved in between.
func (s *Service) VerifyCheckPayment(ctx context.Context, tripID types.ID) error {
	cur, err := s.store.GetPaymentStatus(ctx, tripID)
	if err != nil {
		return err
	}
	if cur != StatusCheckPending {
		return ErrInvalidState
	}
	ok, err := s.store.SetPaymentStatus(ctx, tripID, cur, StatusCheckVerified, true)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// FlagPayment marks any non-verified payment for dispatcher follow-up.
func (s *Service) FlagPayment(ctx context.Context, tripID types.ID) error {
	cur, err := s.store.GetPaymentStatus(ctx, tripID)
	if err != nil {
		return err
	}
	if cur == StatusCheckVerified {
		return ErrInvalidState
	}
	ok, err := s.store.SetPaymentStatus(ctx, tripID, cur, StatusNeedsAttention, false)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// FacilityStatement lists a facility's completed trips for one month and
// totals the prices. Month is "2006-01".
func (s *Service) FacilityStatement(ctx context.Context, facilityID types.ID, month string) (*Statement, error) {
	if facilityID == "" {
		return nil, ErrValidation
	}
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, ErrValidation
	}
	end := start.AddDate(0, 1, 0)
	lines, err := s.store.ListFacilityMonth(ctx, facilityID, start, end)
	if err != nil {
		return nil, err
	}
	total := types.Money{Currency: "USD"}
	for _, l := range lines {
		total.Amount += l.Price.Amount
		if l.Price.Currency != "" {
			total.Currency = l.Price.Currency
		}
	}
	return &Statement{
		FacilityID: facilityID,
		Month:      month,
		Lines:      lines,
		Total:      total,
	}, nil
}
