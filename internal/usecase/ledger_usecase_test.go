package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
	"github.com/brokerops/commissions/internal/usecase/mocks"
)

func TestLedgerUseCase_ListByAgent_CacheReadThrough(t *testing.T) {
	commissionRepo := mocks.NewMockCommissionRepository()
	cache := mocks.NewMockCache()
	uc := usecase.NewLedgerUseCase(commissionRepo, mocks.NewMockCapRepository(), mocks.NewMockCapPolicyRepository(), cache)

	var repoCalls atomic.Int32
	commissionRepo.ListByAgentFunc = func(ctx context.Context, agentID string, from, to time.Time) ([]*domain.CommissionRecord, error) {
		repoCalls.Add(1)
		return []*domain.CommissionRecord{
			{ID: "rec-1", DealID: "deal-1", AgentID: agentID, Gross: domain.Cents(1_500_000, "USD")},
		}, nil
	}

	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		records, err := uc.ListByAgent(context.Background(), "agent-7", from, to)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(records) != 1 || records[0].ID != "rec-1" {
			t.Fatalf("call %d: unexpected records %+v", i, records)
		}
	}

	if got := repoCalls.Load(); got != 1 {
		t.Errorf("repository was queried %d times, want 1 (cache miss only)", got)
	}
}

func TestLedgerUseCase_GetByDeal_NotFound(t *testing.T) {
	uc := usecase.NewLedgerUseCase(mocks.NewMockCommissionRepository(), mocks.NewMockCapRepository(), mocks.NewMockCapPolicyRepository(), nil)

	_, err := uc.GetByDeal(context.Background(), "missing")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("error = %v, want ErrRecordNotFound", err)
	}
}

func TestLedgerUseCase_GetCapUtilization(t *testing.T) {
	capRepo := mocks.NewMockCapRepository()
	capPolicyRepo := mocks.NewMockCapPolicyRepository()
	uc := usecase.NewLedgerUseCase(mocks.NewMockCommissionRepository(), capRepo, capPolicyRepo, nil)
	ctx := context.Background()

	err := capPolicyRepo.Upsert(ctx, &domain.CapPolicy{
		AgentID:      "agent-7",
		FeeYearStart: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		AnnualCap:    domain.Cents(2_000_000, "USD"),
	})
	if err != nil {
		t.Fatalf("seed policy: %v", err)
	}
	err = capRepo.Update(ctx, nil, domain.CapLedgerEntry{
		AgentID: "agent-7", FeeYear: 2026, Collected: domain.Cents(1_850_000, "USD"),
	})
	if err != nil {
		t.Fatalf("seed cap: %v", err)
	}

	util, err := uc.GetCapUtilization(ctx, "agent-7", 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if util.Collected.Cents != 1_850_000 {
		t.Errorf("collected = %d, want 1850000", util.Collected.Cents)
	}
	if util.Remaining.Cents != 150_000 {
		t.Errorf("remaining = %d, want 150000", util.Remaining.Cents)
	}
	if util.Unlimited {
		t.Error("a finite cap must not read as unlimited")
	}
}
