package domain

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors
var (
	ErrInvalidSalePrice  = errors.New("sale price must be positive")
	ErrInvalidRate       = errors.New("commission rate must be positive")
	ErrInvalidSplit      = errors.New("agent split must be between 0 and 100")
	ErrMissingDealID     = errors.New("deal id is required")
	ErrMissingAgentID    = errors.New("agent id is required")
	ErrMissingCloseDate  = errors.New("close date is required")
	ErrRateTooHigh       = errors.New("commission rate exceeds maximum")
	ErrSalePriceTooLarge = errors.New("sale price exceeds maximum allowed")
	ErrNotReversible     = errors.New("record is a reversal and cannot be reversed again")
	ErrAlreadyReversed   = errors.New("deal has already been reversed")
)

// MaxRatePermille caps accepted commission rates at 100%.
const MaxRatePermille = 1000

// MaxSalePriceCents keeps the integer split math far from int64 overflow.
const MaxSalePriceCents = int64(1_000_000_000_000) // 10 billion dollars

// CommissionInput is the financial shape of a closed deal as submitted
// by the upstream deal-closing workflow. Immutable once submitted.
type CommissionInput struct {
	DealID                 string
	AgentID                string
	SalePrice              Money
	CommissionRatePermille int64 // rate x1000, 30 = 3.0%
	AgentSplitPercent      int64 // 0..100
	CloseDate              time.Time
}

// Validate fails fast on malformed input. Out-of-range business values
// are rejected, never clamped.
func (in CommissionInput) Validate() error {
	if in.DealID == "" {
		return ErrMissingDealID
	}
	if in.AgentID == "" {
		return ErrMissingAgentID
	}
	if in.CloseDate.IsZero() {
		return ErrMissingCloseDate
	}
	if !in.SalePrice.IsPositive() {
		return ErrInvalidSalePrice
	}
	if in.SalePrice.Cents > MaxSalePriceCents {
		return fmt.Errorf("%w: %s", ErrSalePriceTooLarge, in.SalePrice)
	}
	if in.CommissionRatePermille <= 0 {
		return ErrInvalidRate
	}
	if in.CommissionRatePermille > MaxRatePermille {
		return fmt.Errorf("%w: %d permille", ErrRateTooHigh, in.CommissionRatePermille)
	}
	if in.AgentSplitPercent < 0 || in.AgentSplitPercent > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidSplit, in.AgentSplitPercent)
	}
	return nil
}

// CommissionRecord is an append-only ledger entry for one finalized split.
// Gross == BrokerNet + AgentNet holds for every record without exception;
// corrections are new offsetting records, never edits.
type CommissionRecord struct {
	ID               string
	DealID           string
	AgentID          string
	Gross            Money
	BrokerNet        Money
	AgentNet         Money
	CappedThisDeal   bool
	ReversedRecordID *string
	CreatedAt        time.Time
}

// IsReversal reports whether the record offsets an earlier one.
func (r *CommissionRecord) IsReversal() bool {
	return r.ReversedRecordID != nil
}

// CheckConservation verifies the conservation invariant on a record.
func (r *CommissionRecord) CheckConservation() error {
	if r.BrokerNet.Cents+r.AgentNet.Cents != r.Gross.Cents {
		return fmt.Errorf("conservation violated for deal %s: gross=%s broker=%s agent=%s",
			r.DealID, r.Gross, r.BrokerNet, r.AgentNet)
	}
	return nil
}

// Reversal builds the offsetting record for r. Amounts are negated, the
// capped flag is carried over, and the new record points back at r.
func (r *CommissionRecord) Reversal(id string, now time.Time) (*CommissionRecord, error) {
	if r.IsReversal() {
		return nil, ErrNotReversible
	}
	orig := r.ID
	return &CommissionRecord{
		ID:               id,
		DealID:           r.DealID,
		AgentID:          r.AgentID,
		Gross:            r.Gross.Neg(),
		BrokerNet:        r.BrokerNet.Neg(),
		AgentNet:         r.AgentNet.Neg(),
		CappedThisDeal:   r.CappedThisDeal,
		ReversedRecordID: &orig,
		CreatedAt:        now,
	}, nil
}
