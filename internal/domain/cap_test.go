package domain

import (
	"testing"
	"time"
)

func TestFeeYearFor(t *testing.T) {
	policy := CapPolicy{
		AgentID:      "agent-1",
		FeeYearStart: time.Date(2020, 4, 15, 0, 0, 0, 0, time.UTC),
		AnnualCap:    usd(2_000_000),
	}

	tests := []struct {
		name      string
		closeDate time.Time
		want      int
	}{
		{"day before anniversary", time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC), 2024},
		{"on anniversary", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), 2025},
		{"after anniversary", time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), 2025},
		{"early in calendar year", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 2025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FeeYearFor(policy, tt.closeDate); got != tt.want {
				t.Errorf("FeeYearFor(%s) = %d, want %d", tt.closeDate.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestFeeYearForCalendarAnchor(t *testing.T) {
	policy := CapPolicy{
		FeeYearStart: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		AnnualCap:    usd(2_000_000),
	}

	d := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	if got := FeeYearFor(policy, d); got != 2025 {
		t.Errorf("calendar-anchored fee year = %d, want 2025", got)
	}
}

func TestRemainingRoom(t *testing.T) {
	policy := CapPolicy{AnnualCap: usd(2_000_000)}

	tests := []struct {
		name      string
		collected int64
		want      int64
	}{
		{"untouched", 0, 2_000_000},
		{"partially used", 1_850_000, 150_000},
		{"fully used", 2_000_000, 0},
		{"over cap floors at zero", 2_100_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := CapLedgerEntry{Collected: usd(tt.collected)}
			if got := entry.RemainingRoom(policy); got.Cents != tt.want {
				t.Errorf("RemainingRoom = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}
