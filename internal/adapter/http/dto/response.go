package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// moneyDecimal renders stored cents as a two-place decimal for display.
func moneyDecimal(m domain.Money) decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// CommissionRecordResponse represents a ledger record in API responses.
type CommissionRecordResponse struct {
	ID               string          `json:"id"`
	DealID           string          `json:"deal_id"`
	AgentID          string          `json:"agent_id"`
	Gross            decimal.Decimal `json:"gross"`
	BrokerNet        decimal.Decimal `json:"broker_net"`
	AgentNet         decimal.Decimal `json:"agent_net"`
	Currency         string          `json:"currency"`
	Capped           bool            `json:"capped"`
	ReversedRecordID *string         `json:"reversed_record_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CommissionRecordFromDomain converts a domain record to a response.
func CommissionRecordFromDomain(r *domain.CommissionRecord) *CommissionRecordResponse {
	return &CommissionRecordResponse{
		ID:               r.ID,
		DealID:           r.DealID,
		AgentID:          r.AgentID,
		Gross:            moneyDecimal(r.Gross),
		BrokerNet:        moneyDecimal(r.BrokerNet),
		AgentNet:         moneyDecimal(r.AgentNet),
		Currency:         r.Gross.Currency,
		Capped:           r.CappedThisDeal,
		ReversedRecordID: r.ReversedRecordID,
		CreatedAt:        r.CreatedAt,
	}
}

// CommissionRecordsFromDomain converts domain records to responses.
func CommissionRecordsFromDomain(records []*domain.CommissionRecord) []*CommissionRecordResponse {
	result := make([]*CommissionRecordResponse, len(records))
	for i, r := range records {
		result[i] = CommissionRecordFromDomain(r)
	}
	return result
}

// PayoutLineItemResponse represents a payout line item in API responses.
type PayoutLineItemResponse struct {
	ID                 string          `json:"id"`
	CommissionRecordID string          `json:"commission_record_id"`
	AgentID            string          `json:"agent_id"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	State              string          `json:"state"`
	BatchID            *string         `json:"batch_id,omitempty"`
	TransferReference  *string         `json:"transfer_reference,omitempty"`
	AttemptCount       int             `json:"attempt_count"`
	LastTransitionAt   time.Time       `json:"last_transition_at"`
	CreatedAt          time.Time       `json:"created_at"`
}

// PayoutLineItemFromDomain converts a domain line item to a response.
func PayoutLineItemFromDomain(item *domain.PayoutLineItem) *PayoutLineItemResponse {
	return &PayoutLineItemResponse{
		ID:                 item.ID,
		CommissionRecordID: item.CommissionRecordID,
		AgentID:            item.AgentID,
		Amount:             moneyDecimal(item.Amount),
		Currency:           item.Amount.Currency,
		State:              string(item.State),
		BatchID:            item.BatchID,
		TransferReference:  item.TransferReference,
		AttemptCount:       item.AttemptCount,
		LastTransitionAt:   item.LastTransitionAt,
		CreatedAt:          item.CreatedAt,
	}
}

// PayoutLineItemsFromDomain converts domain line items to responses.
func PayoutLineItemsFromDomain(items []*domain.PayoutLineItem) []*PayoutLineItemResponse {
	result := make([]*PayoutLineItemResponse, len(items))
	for i, item := range items {
		result[i] = PayoutLineItemFromDomain(item)
	}
	return result
}

// BatchResponse represents a settlement batch in API responses.
type BatchResponse struct {
	ID           string     `json:"id"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	Outcome      string     `json:"outcome"`
	ItemCount    int        `json:"item_count"`
	PaidCount    int        `json:"paid_count"`
	FailedCount  int        `json:"failed_count"`
	PendingCount int        `json:"pending_count"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// BatchFromDomain converts a domain batch to a response.
func BatchFromDomain(b *domain.PayoutBatch) *BatchResponse {
	return &BatchResponse{
		ID:           b.ID,
		SubmittedAt:  b.SubmittedAt,
		Outcome:      string(b.Outcome),
		ItemCount:    b.ItemCount,
		PaidCount:    b.PaidCount,
		FailedCount:  b.FailedCount,
		PendingCount: b.PendingCount,
		ResolvedAt:   b.ResolvedAt,
	}
}

// BatchSummaryResponse represents the result of a settlement run.
type BatchSummaryResponse struct {
	BatchID    string `json:"batch_id,omitempty"`
	Outcome    string `json:"outcome"`
	Claimed    int    `json:"claimed"`
	Paid       int    `json:"paid"`
	Failed     int    `json:"failed"`
	Ambiguous  int    `json:"ambiguous"`
	Reconciled int    `json:"reconciled"`
}

// BatchSummaryFromUseCase converts a run summary to a response.
func BatchSummaryFromUseCase(s *usecase.BatchSummary) *BatchSummaryResponse {
	return &BatchSummaryResponse{
		BatchID:    s.BatchID,
		Outcome:    string(s.Outcome),
		Claimed:    s.Claimed,
		Paid:       s.Paid,
		Failed:     s.Failed,
		Ambiguous:  s.Ambiguous,
		Reconciled: s.Reconciled,
	}
}

// CapPolicyResponse represents a cap policy in API responses.
type CapPolicyResponse struct {
	AgentID      string          `json:"agent_id"`
	FeeYearStart time.Time       `json:"fee_year_start"`
	AnnualCap    decimal.Decimal `json:"annual_cap"`
	Currency     string          `json:"currency"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CapPolicyFromDomain converts a domain policy to a response.
func CapPolicyFromDomain(p *domain.CapPolicy) *CapPolicyResponse {
	return &CapPolicyResponse{
		AgentID:      p.AgentID,
		FeeYearStart: p.FeeYearStart,
		AnnualCap:    moneyDecimal(p.AnnualCap),
		Currency:     p.AnnualCap.Currency,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// CapUtilizationResponse reports collected against cap for one fee year.
type CapUtilizationResponse struct {
	AgentID   string          `json:"agent_id"`
	FeeYear   int             `json:"fee_year"`
	Collected decimal.Decimal `json:"collected"`
	AnnualCap decimal.Decimal `json:"annual_cap"`
	Remaining decimal.Decimal `json:"remaining"`
	Unlimited bool            `json:"unlimited"`
	Currency  string          `json:"currency"`
}

// CapUtilizationFromUseCase converts cap utilization to a response.
func CapUtilizationFromUseCase(u *usecase.CapUtilization) *CapUtilizationResponse {
	return &CapUtilizationResponse{
		AgentID:   u.AgentID,
		FeeYear:   u.FeeYear,
		Collected: moneyDecimal(u.Collected),
		AnnualCap: moneyDecimal(u.AnnualCap),
		Remaining: moneyDecimal(u.Remaining),
		Unlimited: u.Unlimited,
		Currency:  u.AnnualCap.Currency,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
