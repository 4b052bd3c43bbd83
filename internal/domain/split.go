package domain

import "time"

// SplitResult is the outcome of ComputeSplit: the finalized record plus
// the cap ledger entry after the broker share is applied against it.
type SplitResult struct {
	Record   *CommissionRecord
	CapState CapLedgerEntry
}

// ComputeSplit turns a closed deal into a conserved three-way split.
// Pure: no I/O, no clock beyond the supplied values.
//
// GCI is the single rounding point (half-up at the minor unit). The
// broker share is rounded the same way, then limited by the remaining
// cap room; the agent net is derived by subtraction so
// Gross == BrokerNet + AgentNet holds by construction.
func ComputeSplit(id string, in CommissionInput, policy CapPolicy, capState CapLedgerEntry, now time.Time) (SplitResult, error) {
	if err := in.Validate(); err != nil {
		return SplitResult{}, err
	}

	currency := in.SalePrice.Currency
	gci := in.SalePrice.MulPermille(in.CommissionRatePermille)

	var brokerNet Money
	capped := false

	if in.AgentSplitPercent == 100 {
		// Fast path: nothing for the broker, cap is not consulted.
		brokerNet = Zero(currency)
	} else if policy.Unlimited() {
		brokerNet = gci.MulPercent(100 - in.AgentSplitPercent)
	} else {
		brokerShareRaw := gci.MulPercent(100 - in.AgentSplitPercent)
		room := capState.RemainingRoom(policy)

		var err error
		brokerNet, err = brokerShareRaw.Min(room)
		if err != nil {
			return SplitResult{}, err
		}
		capped = brokerNet.Cents < brokerShareRaw.Cents
	}

	agentNet, err := gci.Sub(brokerNet)
	if err != nil {
		return SplitResult{}, err
	}

	record := &CommissionRecord{
		ID:             id,
		DealID:         in.DealID,
		AgentID:        in.AgentID,
		Gross:          gci,
		BrokerNet:      brokerNet,
		AgentNet:       agentNet,
		CappedThisDeal: capped,
		CreatedAt:      now,
	}
	if err := record.CheckConservation(); err != nil {
		return SplitResult{}, err
	}

	updated := capState
	updated.Collected = Money{Cents: capState.Collected.Cents + brokerNet.Cents, Currency: currency}
	updated.UpdatedAt = now

	return SplitResult{Record: record, CapState: updated}, nil
}
