package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records one state transition with the actor that caused it.
type AuditLog struct {
	ID           string
	Actor        string // operator name or "system"
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionDealSubmit    AuditAction = "deal.submit"
	AuditActionDealReverse   AuditAction = "deal.reverse"
	AuditActionPayoutRelease AuditAction = "payout.release"
	AuditActionPayoutClaim   AuditAction = "payout.claim"
	AuditActionPayoutResolve AuditAction = "payout.resolve"
	AuditActionBatchRun      AuditAction = "batch.run"
	AuditActionCapPolicySet  AuditAction = "cap_policy.set"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
