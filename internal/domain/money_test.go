package domain

import (
	"errors"
	"testing"
)

func TestMulPermilleRoundsHalfUp(t *testing.T) {
	tests := []struct {
		cents int64
		rate  int64
		want  int64
	}{
		{50_000_000, 30, 1_500_000}, // exact
		{33_333, 30, 1000},          // 999.99 rounds up
		{16_666, 30, 500},           // 499.98 rounds up
		{16_683, 30, 500},           // 500.49 rounds down
		{16_684, 30, 501},           // 500.52 rounds up
		{1, 1, 0},                   // 0.001 rounds down
		{500, 1, 1},                 // 0.5 rounds up (half-up)
		{0, 30, 0},
	}

	for _, tt := range tests {
		got := Cents(tt.cents, "USD").MulPermille(tt.rate)
		if got.Cents != tt.want {
			t.Errorf("MulPermille(%d, %d) = %d, want %d", tt.cents, tt.rate, got.Cents, tt.want)
		}
	}
}

func TestMulPercentRoundsHalfUp(t *testing.T) {
	tests := []struct {
		cents int64
		pct   int64
		want  int64
	}{
		{1_500_000, 20, 300_000},
		{999, 50, 500}, // 499.5 rounds up
		{101, 50, 51},  // 50.5 rounds up
		{100, 33, 33},  // 33 exact
		{1, 50, 1},     // 0.5 rounds up
	}

	for _, tt := range tests {
		got := Cents(tt.cents, "USD").MulPercent(tt.pct)
		if got.Cents != tt.want {
			t.Errorf("MulPercent(%d, %d) = %d, want %d", tt.cents, tt.pct, got.Cents, tt.want)
		}
	}
}

func TestMoneyCurrencyGuards(t *testing.T) {
	a := Cents(100, "USD")
	b := Cents(50, "EUR")

	if _, err := a.Add(b); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Add across currencies = %v, want ErrCurrencyMismatch", err)
	}
	if _, err := a.Sub(b); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Sub across currencies = %v, want ErrCurrencyMismatch", err)
	}
	if _, err := a.Min(b); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Min across currencies = %v, want ErrCurrencyMismatch", err)
	}
}

func TestMoneySignHelpers(t *testing.T) {
	z := Zero("USD")
	if z.Cents != 0 || z.Currency != "USD" {
		t.Errorf("Zero(USD) = %+v", z)
	}
	if !z.IsZero() || z.IsPositive() || z.IsNegative() {
		t.Errorf("Zero(USD) sign checks: zero=%v pos=%v neg=%v", z.IsZero(), z.IsPositive(), z.IsNegative())
	}
	if p := Cents(1, "USD"); !p.IsPositive() || p.IsZero() || p.IsNegative() {
		t.Errorf("Cents(1) sign checks: zero=%v pos=%v neg=%v", p.IsZero(), p.IsPositive(), p.IsNegative())
	}
	if n := Cents(-1, "USD"); !n.IsNegative() || n.IsZero() || n.IsPositive() {
		t.Errorf("Cents(-1) sign checks: zero=%v pos=%v neg=%v", n.IsZero(), n.IsPositive(), n.IsNegative())
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1_500_000, "15000.00 USD"},
		{-1_500_000, "-15000.00 USD"},
		{5, "0.05 USD"},
		{0, "0.00 USD"},
	}

	for _, tt := range tests {
		if got := Cents(tt.cents, "USD").String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
