package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brokerops/commissions/internal/domain"
)

const agentListingCacheTTL = 30 * time.Second

// LedgerUseCase serves read-only ledger queries for the display layer.
// Listings are snapshot-consistent per call; freshly appended records
// becoming visible a little later is acceptable for display.
type LedgerUseCase struct {
	commissionRepo CommissionRepository
	capRepo        CapRepository
	capPolicyRepo  CapPolicyRepository
	cache          Cache
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(commissionRepo CommissionRepository, capRepo CapRepository, capPolicyRepo CapPolicyRepository, cache Cache) *LedgerUseCase {
	return &LedgerUseCase{
		commissionRepo: commissionRepo,
		capRepo:        capRepo,
		capPolicyRepo:  capPolicyRepo,
		cache:          cache,
	}
}

// GetByDeal returns the commission record for a deal.
func (uc *LedgerUseCase) GetByDeal(ctx context.Context, dealID string) (*domain.CommissionRecord, error) {
	return uc.commissionRepo.GetByDealID(ctx, dealID)
}

// ListByAgent returns an agent's records within [from, to), oldest
// first, through a short-lived cache.
func (uc *LedgerUseCase) ListByAgent(ctx context.Context, agentID string, from, to time.Time) ([]*domain.CommissionRecord, error) {
	key := fmt.Sprintf("ledger:agent:%s:%d:%d", agentID, from.Unix(), to.Unix())

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil && cached != "" {
			var records []*domain.CommissionRecord
			if err := json.Unmarshal([]byte(cached), &records); err == nil {
				return records, nil
			}
		}
	}

	records, err := uc.commissionRepo.ListByAgent(ctx, agentID, from, to)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(records); err == nil {
			_ = uc.cache.Set(ctx, key, string(data), agentListingCacheTTL)
		}
	}

	return records, nil
}

// CapUtilization reports an agent's collected total against the active
// cap for the given fee year.
type CapUtilization struct {
	AgentID   string
	FeeYear   int
	Collected domain.Money
	AnnualCap domain.Money
	Remaining domain.Money
	Unlimited bool
}

// GetCapUtilization returns cap posture for display. A missing fee-year
// entry reads as zero collected.
func (uc *LedgerUseCase) GetCapUtilization(ctx context.Context, agentID string, feeYear int) (*CapUtilization, error) {
	policy, err := uc.capPolicyRepo.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	entry, err := uc.capRepo.Get(ctx, agentID, feeYear)
	if err != nil {
		return nil, err
	}

	return &CapUtilization{
		AgentID:   agentID,
		FeeYear:   feeYear,
		Collected: entry.Collected,
		AnnualCap: policy.AnnualCap,
		Remaining: entry.RemainingRoom(*policy),
		Unlimited: policy.Unlimited(),
	}, nil
}
