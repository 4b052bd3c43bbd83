package domain

import "time"

// CapPolicy is the active cap configuration for one agent. Changing it
// does not retroactively alter already-settled splits.
type CapPolicy struct {
	AgentID      string
	FeeYearStart time.Time // anniversary anchor; month/day are what matter
	AnnualCap    Money
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CapLedgerEntry tracks broker-retained amounts collected from one agent
// within one fee year. Written only by the split path; monotonically
// non-decreasing within a year. Rollover creates a new entry so prior
// years stay queryable.
type CapLedgerEntry struct {
	AgentID   string
	FeeYear   int
	Collected Money
	UpdatedAt time.Time
}

// Unlimited reports whether the policy disables capping. A zero annual
// cap means the broker share is never limited.
func (p CapPolicy) Unlimited() bool {
	return p.AnnualCap.Cents == 0
}

// RemainingRoom returns how much the broker may still retain this fee
// year under the given policy, floored at zero. Not meaningful for an
// unlimited policy; callers check Unlimited first.
func (e CapLedgerEntry) RemainingRoom(policy CapPolicy) Money {
	room := policy.AnnualCap.Cents - e.Collected.Cents
	if room < 0 {
		room = 0
	}
	return Money{Cents: room, Currency: policy.AnnualCap.Currency}
}

// FeeYearFor labels the fee year containing closeDate. A fee year runs
// from the policy anniversary (month/day of FeeYearStart) and is labeled
// by the calendar year it starts in.
func FeeYearFor(policy CapPolicy, closeDate time.Time) int {
	anniv := time.Date(closeDate.Year(), policy.FeeYearStart.Month(), policy.FeeYearStart.Day(),
		0, 0, 0, 0, closeDate.Location())
	if closeDate.Before(anniv) {
		return closeDate.Year() - 1
	}
	return closeDate.Year()
}
