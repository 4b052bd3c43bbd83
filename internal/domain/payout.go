package domain

import (
	"fmt"
	"time"
)

// LineItemState is the lifecycle state of a payout line item.
type LineItemState string

const (
	LineItemPending   LineItemState = "pending"
	LineItemReady     LineItemState = "ready"
	LineItemSubmitted LineItemState = "submitted"
	LineItemPaid      LineItemState = "paid"
	LineItemFailed    LineItemState = "failed"
)

// PayoutLineItem is the payable derived from one commission record
// (1:1). It carries the agent-owed amount through the settlement
// lifecycle. Transitions out of Ready happen via a conditional update
// keyed on the current state, so concurrent claimers race safely.
type PayoutLineItem struct {
	ID                 string
	CommissionRecordID string
	AgentID            string
	Amount             Money
	State              LineItemState
	BatchID            *string
	TransferReference  *string
	AttemptCount       int
	LastTransitionAt   time.Time
	CreatedAt          time.Time
}

// lineItemTransitions enumerates the legal state machine. Failed goes
// back to Ready only through an explicit operator release; there is no
// silent auto-retry.
var lineItemTransitions = map[LineItemState][]LineItemState{
	LineItemPending:   {LineItemReady},
	LineItemReady:     {LineItemSubmitted},
	LineItemSubmitted: {LineItemPaid, LineItemFailed},
	LineItemFailed:    {LineItemReady},
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to LineItemState) bool {
	for _, next := range lineItemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GuardTransition returns ErrInvalidTransition with the concrete states
// named, so the operator can act on the rejection directly.
func GuardTransition(from, to LineItemState) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// SettlementToken derives the idempotency token for one transfer
// attempt. Deterministic over (lineItemID, batchID): re-running
// reconciliation or a crashed batch re-queries the same token instead
// of issuing a fresh transfer.
func SettlementToken(lineItemID, batchID string) string {
	return lineItemID + ":" + batchID
}
