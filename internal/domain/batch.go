package domain

import "time"

// BatchOutcome is the terminal disposition of a settlement run.
type BatchOutcome string

const (
	BatchInFlight              BatchOutcome = "in_flight"
	BatchCompleted             BatchOutcome = "completed"
	BatchCompletedWithFailures BatchOutcome = "completed_with_failures"
)

// PayoutBatch owns the attempt metadata for one settlement run. Batches
// are terminal once resolved; only individual line items are retried,
// each through an explicit re-release.
type PayoutBatch struct {
	ID          string
	SubmittedAt time.Time
	Outcome     BatchOutcome
	ItemCount   int
	PaidCount   int
	FailedCount int
	// Items left Submitted at the end of the run: ambiguous outcomes
	// awaiting reconciliation by idempotency token.
	PendingCount int
	ResolvedAt   *time.Time
}
