package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// SubmitDealRequest represents a closed deal submitted for splitting.
// Amounts arrive as decimal strings and are converted to whole cents at
// this boundary; the core never sees fractional cents.
type SubmitDealRequest struct {
	DealID                 string          `json:"deal_id"`
	AgentID                string          `json:"agent_id"`
	SalePrice              decimal.Decimal `json:"sale_price"`
	Currency               string          `json:"currency"`
	CommissionRatePermille int64           `json:"commission_rate_permille"`
	AgentSplitPercent      int64           `json:"agent_split_percent"`
	CloseDate              time.Time       `json:"close_date"`
}

// ToDomainInput converts to the core's input type.
func (r *SubmitDealRequest) ToDomainInput() (domain.CommissionInput, error) {
	cents, err := decimalToCents(r.SalePrice)
	if err != nil {
		return domain.CommissionInput{}, fmt.Errorf("sale_price: %w", err)
	}

	return domain.CommissionInput{
		DealID:                 r.DealID,
		AgentID:                r.AgentID,
		SalePrice:              domain.Cents(cents, r.Currency),
		CommissionRatePermille: r.CommissionRatePermille,
		AgentSplitPercent:      r.AgentSplitPercent,
		CloseDate:              r.CloseDate,
	}, nil
}

// SetCapPolicyRequest represents an operator's cap configuration.
type SetCapPolicyRequest struct {
	FeeYearStart time.Time       `json:"fee_year_start"`
	AnnualCap    decimal.Decimal `json:"annual_cap"`
	Currency     string          `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *SetCapPolicyRequest) ToUseCaseInput(agentID string) (usecase.SetPolicyInput, error) {
	cents, err := decimalToCents(r.AnnualCap)
	if err != nil {
		return usecase.SetPolicyInput{}, fmt.Errorf("annual_cap: %w", err)
	}

	return usecase.SetPolicyInput{
		AgentID:        agentID,
		FeeYearStart:   r.FeeYearStart,
		AnnualCapCents: cents,
		Currency:       r.Currency,
	}, nil
}

// decimalToCents converts a decimal currency amount to whole minor
// units, rejecting sub-cent precision outright.
func decimalToCents(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-cent precision", d)
	}
	return shifted.IntPart(), nil
}
