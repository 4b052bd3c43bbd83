package domain

import (
	"errors"
	"testing"
	"time"
)

func usd(cents int64) Money { return Cents(cents, "USD") }

func testPolicy(capCents int64) CapPolicy {
	return CapPolicy{
		AgentID:      "agent-1",
		FeeYearStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AnnualCap:    usd(capCents),
	}
}

func TestComputeSplit(t *testing.T) {
	closeDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	tests := []struct {
		name          string
		input         CommissionInput
		policy        CapPolicy
		collected     int64
		wantGross     int64
		wantBroker    int64
		wantAgent     int64
		wantCapped    bool
		wantCollected int64
	}{
		{
			// $500k sale, 3.0%, 80/20 split, $20k cap with $18.5k used.
			name: "cap limits broker share",
			input: CommissionInput{
				DealID: "deal-1", AgentID: "agent-1",
				SalePrice:              usd(50_000_000),
				CommissionRatePermille: 30,
				AgentSplitPercent:      80,
				CloseDate:              closeDate,
			},
			policy:        testPolicy(2_000_000),
			collected:     1_850_000,
			wantGross:     1_500_000,
			wantBroker:    150_000,
			wantAgent:     1_350_000,
			wantCapped:    true,
			wantCollected: 2_000_000,
		},
		{
			name: "already capped agent keeps full gci",
			input: CommissionInput{
				DealID: "deal-2", AgentID: "agent-1",
				SalePrice:              usd(50_000_000),
				CommissionRatePermille: 30,
				AgentSplitPercent:      80,
				CloseDate:              closeDate,
			},
			policy:        testPolicy(2_000_000),
			collected:     2_000_000,
			wantGross:     1_500_000,
			wantBroker:    0,
			wantAgent:     1_500_000,
			wantCapped:    true,
			wantCollected: 2_000_000,
		},
		{
			name: "uncapped deal",
			input: CommissionInput{
				DealID: "deal-3", AgentID: "agent-1",
				SalePrice:              usd(50_000_000),
				CommissionRatePermille: 30,
				AgentSplitPercent:      80,
				CloseDate:              closeDate,
			},
			policy:        testPolicy(2_000_000),
			collected:     0,
			wantGross:     1_500_000,
			wantBroker:    300_000,
			wantAgent:     1_200_000,
			wantCapped:    false,
			wantCollected: 300_000,
		},
		{
			name: "full agent split skips cap",
			input: CommissionInput{
				DealID: "deal-4", AgentID: "agent-1",
				SalePrice:              usd(50_000_000),
				CommissionRatePermille: 30,
				AgentSplitPercent:      100,
				CloseDate:              closeDate,
			},
			policy:        testPolicy(2_000_000),
			collected:     500_000,
			wantGross:     1_500_000,
			wantBroker:    0,
			wantAgent:     1_500_000,
			wantCapped:    false,
			wantCollected: 500_000,
		},
		{
			name: "gci rounds half up",
			input: CommissionInput{
				DealID: "deal-5", AgentID: "agent-1",
				// 333.33 * 3.0% = 10.0 (999.99 -> 1000 after half-up at
				// 999.9 tenths); exact: 33333 * 30 / 1000 = 999.99 -> 1000
				SalePrice:              usd(33_333),
				CommissionRatePermille: 30,
				AgentSplitPercent:      50,
				CloseDate:              closeDate,
			},
			policy:        testPolicy(2_000_000),
			collected:     0,
			wantGross:     1000,
			wantBroker:    500,
			wantAgent:     500,
			wantCapped:    false,
			wantCollected: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capState := CapLedgerEntry{
				AgentID:   tt.input.AgentID,
				FeeYear:   FeeYearFor(tt.policy, tt.input.CloseDate),
				Collected: usd(tt.collected),
			}

			result, err := ComputeSplit("rec-1", tt.input, tt.policy, capState, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			rec := result.Record
			if rec.Gross.Cents != tt.wantGross {
				t.Errorf("gross = %d, want %d", rec.Gross.Cents, tt.wantGross)
			}
			if rec.BrokerNet.Cents != tt.wantBroker {
				t.Errorf("broker net = %d, want %d", rec.BrokerNet.Cents, tt.wantBroker)
			}
			if rec.AgentNet.Cents != tt.wantAgent {
				t.Errorf("agent net = %d, want %d", rec.AgentNet.Cents, tt.wantAgent)
			}
			if rec.CappedThisDeal != tt.wantCapped {
				t.Errorf("capped = %v, want %v", rec.CappedThisDeal, tt.wantCapped)
			}
			if result.CapState.Collected.Cents != tt.wantCollected {
				t.Errorf("collected = %d, want %d", result.CapState.Collected.Cents, tt.wantCollected)
			}
			if err := rec.CheckConservation(); err != nil {
				t.Errorf("conservation: %v", err)
			}
		})
	}
}

// A zero annual cap disables capping: the broker keeps the full share
// no matter how much has been collected.
func TestComputeSplitZeroCapIsUnlimited(t *testing.T) {
	in := CommissionInput{
		DealID: "deal-1", AgentID: "agent-1",
		SalePrice:              usd(50_000_000),
		CommissionRatePermille: 30,
		AgentSplitPercent:      80,
		CloseDate:              time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	policy := testPolicy(0)
	if !policy.Unlimited() {
		t.Fatal("zero annual cap must read as unlimited")
	}
	capState := CapLedgerEntry{AgentID: "agent-1", Collected: usd(1_850_000)}

	result, err := ComputeSplit("rec-1", in, policy, capState, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := result.Record
	if rec.BrokerNet.Cents != 300_000 {
		t.Errorf("broker net = %d, want full 300000 share", rec.BrokerNet.Cents)
	}
	if rec.AgentNet.Cents != 1_200_000 {
		t.Errorf("agent net = %d, want 1200000", rec.AgentNet.Cents)
	}
	if rec.CappedThisDeal {
		t.Error("an unlimited policy must never mark a deal capped")
	}
	if err := rec.CheckConservation(); err != nil {
		t.Errorf("conservation: %v", err)
	}
}

func TestComputeSplitRejectsBadInput(t *testing.T) {
	closeDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	base := CommissionInput{
		DealID: "deal-1", AgentID: "agent-1",
		SalePrice:              usd(10_000_000),
		CommissionRatePermille: 30,
		AgentSplitPercent:      80,
		CloseDate:              closeDate,
	}

	tests := []struct {
		name   string
		mutate func(*CommissionInput)
		want   error
	}{
		{"zero price", func(in *CommissionInput) { in.SalePrice = usd(0) }, ErrInvalidSalePrice},
		{"negative price", func(in *CommissionInput) { in.SalePrice = usd(-100) }, ErrInvalidSalePrice},
		{"zero rate", func(in *CommissionInput) { in.CommissionRatePermille = 0 }, ErrInvalidRate},
		{"negative rate", func(in *CommissionInput) { in.CommissionRatePermille = -5 }, ErrInvalidRate},
		{"rate over 100 percent", func(in *CommissionInput) { in.CommissionRatePermille = 1001 }, ErrRateTooHigh},
		{"split below range", func(in *CommissionInput) { in.AgentSplitPercent = -1 }, ErrInvalidSplit},
		{"split above range", func(in *CommissionInput) { in.AgentSplitPercent = 101 }, ErrInvalidSplit},
		{"missing deal id", func(in *CommissionInput) { in.DealID = "" }, ErrMissingDealID},
		{"missing agent id", func(in *CommissionInput) { in.AgentID = "" }, ErrMissingAgentID},
		{"missing close date", func(in *CommissionInput) { in.CloseDate = time.Time{} }, ErrMissingCloseDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)

			_, err := ComputeSplit("rec-1", in, testPolicy(2_000_000), CapLedgerEntry{}, time.Now())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestConservationProperty sweeps prices, rates and splits and asserts
// the conservation law holds exactly in integer minor units.
func TestConservationProperty(t *testing.T) {
	closeDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	policy := testPolicy(2_000_000)

	prices := []int64{1, 99, 100, 12_345, 1_000_000, 49_999_999, 50_000_000, 123_456_789}
	rates := []int64{1, 15, 25, 30, 50, 100, 999, 1000}
	splits := []int64{0, 1, 50, 70, 80, 95, 99, 100}
	collected := []int64{0, 1, 1_850_000, 1_999_999, 2_000_000}

	for _, p := range prices {
		for _, r := range rates {
			for _, s := range splits {
				for _, c := range collected {
					in := CommissionInput{
						DealID: "deal", AgentID: "agent",
						SalePrice:              usd(p),
						CommissionRatePermille: r,
						AgentSplitPercent:      s,
						CloseDate:              closeDate,
					}
					capState := CapLedgerEntry{AgentID: "agent", Collected: usd(c)}

					result, err := ComputeSplit("rec", in, policy, capState, time.Now())
					if err != nil {
						t.Fatalf("price=%d rate=%d split=%d: %v", p, r, s, err)
					}

					rec := result.Record
					if rec.BrokerNet.Cents+rec.AgentNet.Cents != rec.Gross.Cents {
						t.Fatalf("conservation violated: price=%d rate=%d split=%d collected=%d gross=%d broker=%d agent=%d",
							p, r, s, c, rec.Gross.Cents, rec.BrokerNet.Cents, rec.AgentNet.Cents)
					}
					if rec.BrokerNet.IsNegative() || result.CapState.Collected.Cents < c {
						t.Fatalf("cap regressed: price=%d rate=%d split=%d collected=%d", p, r, s, c)
					}
					if result.CapState.Collected.Cents > policy.AnnualCap.Cents && c <= policy.AnnualCap.Cents {
						t.Fatalf("cap exceeded: collected=%d cap=%d", result.CapState.Collected.Cents, policy.AnnualCap.Cents)
					}
				}
			}
		}
	}
}
