package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSubmitDealRequest_ToDomainInput(t *testing.T) {
	req := &SubmitDealRequest{
		DealID:                 "deal-1",
		AgentID:                "agent-7",
		SalePrice:              decimal.RequireFromString("499999.99"),
		Currency:               "USD",
		CommissionRatePermille: 30,
		AgentSplitPercent:      80,
		CloseDate:              time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	input, err := req.ToDomainInput()
	if err != nil {
		t.Fatalf("ToDomainInput returned error: %v", err)
	}

	if input.SalePrice.Cents != 49_999_999 {
		t.Errorf("expected 49999999 cents, got %d", input.SalePrice.Cents)
	}
	if input.SalePrice.Currency != "USD" {
		t.Errorf("expected USD, got %s", input.SalePrice.Currency)
	}
	if input.DealID != "deal-1" || input.AgentID != "agent-7" {
		t.Errorf("identifiers not carried over: %+v", input)
	}
}

func TestDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"500000", 50_000_000, false},
		{"499999.99", 49_999_999, false},
		{"0.01", 1, false},
		{"0", 0, false},
		{"-12.34", -1234, false},
		{"499999.995", 0, true},
		{"0.001", 0, true},
	}

	for _, tt := range tests {
		got, err := decimalToCents(decimal.RequireFromString(tt.in))
		if tt.wantErr {
			if err == nil {
				t.Errorf("decimalToCents(%s) = %d, want sub-cent error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("decimalToCents(%s) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("decimalToCents(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSetCapPolicyRequest_ToUseCaseInput(t *testing.T) {
	req := &SetCapPolicyRequest{
		FeeYearStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		AnnualCap:    decimal.RequireFromString("25000.00"),
		Currency:     "USD",
	}

	input, err := req.ToUseCaseInput("agent-7")
	if err != nil {
		t.Fatalf("ToUseCaseInput returned error: %v", err)
	}

	if input.AgentID != "agent-7" {
		t.Errorf("expected agent-7, got %s", input.AgentID)
	}
	if input.AnnualCapCents != 2_500_000 {
		t.Errorf("expected 2500000 cents, got %d", input.AnnualCapCents)
	}
}
