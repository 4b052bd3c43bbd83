package usecase

import (
	"context"
	"time"

	"github.com/brokerops/commissions/internal/domain"
)

// CapPolicyUseCase manages per-agent cap policies. A policy change
// applies to future splits only; settled records are never rewritten.
type CapPolicyUseCase struct {
	capPolicyRepo CapPolicyRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
}

// NewCapPolicyUseCase creates a new CapPolicyUseCase.
func NewCapPolicyUseCase(capPolicyRepo CapPolicyRepository, auditRepo AuditRepository, idGen IDGenerator) *CapPolicyUseCase {
	return &CapPolicyUseCase{capPolicyRepo: capPolicyRepo, auditRepo: auditRepo, idGen: idGen}
}

// SetPolicyInput is the operator's cap configuration for one agent.
type SetPolicyInput struct {
	AgentID        string
	FeeYearStart   time.Time
	AnnualCapCents int64
	Currency       string
}

// Set stores the active policy for an agent.
func (uc *CapPolicyUseCase) Set(ctx context.Context, input SetPolicyInput) (*domain.CapPolicy, error) {
	if input.AgentID == "" {
		return nil, domain.ErrMissingAgentID
	}
	if input.AnnualCapCents < 0 {
		return nil, domain.ErrInvalidCapAmount
	}

	before, _ := uc.capPolicyRepo.Get(ctx, input.AgentID)

	now := time.Now().UTC()
	policy := &domain.CapPolicy{
		AgentID:      input.AgentID,
		FeeYearStart: input.FeeYearStart,
		AnnualCap:    domain.Cents(input.AnnualCapCents, input.Currency),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if before != nil {
		policy.CreatedAt = before.CreatedAt
	}

	if err := uc.capPolicyRepo.Upsert(ctx, policy); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        ActorFromContext(ctx),
			Action:       string(domain.AuditActionCapPolicySet),
			ResourceType: "cap_policy",
			ResourceID:   input.AgentID,
			BeforeState:  domain.MarshalState(before),
			AfterState:   domain.MarshalState(policy),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		_ = uc.auditRepo.Create(ctx, auditLog)
	}

	return policy, nil
}

// Get returns the active policy for an agent.
func (uc *CapPolicyUseCase) Get(ctx context.Context, agentID string) (*domain.CapPolicy, error) {
	return uc.capPolicyRepo.Get(ctx, agentID)
}
