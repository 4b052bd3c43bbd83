package domain

import "time"

// Event types
const (
	EventTypeDealRecorded   = "deal.recorded"
	EventTypeDealReversed   = "deal.reversed"
	EventTypePayoutReleased = "payout.released"
	EventTypePayoutResolved = "payout.resolved"
	EventTypeBatchCompleted = "batch.completed"
)

// Aggregate types
const (
	AggregateTypeDeal   = "deal"
	AggregateTypePayout = "payout"
	AggregateTypeBatch  = "batch"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
