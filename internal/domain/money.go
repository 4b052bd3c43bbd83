package domain

import "fmt"

// Money is an amount in minor units (cents) plus an ISO 4217 currency
// code. All split arithmetic happens on the integer cents so there is
// no floating-point drift anywhere in the ledger.
type Money struct {
	Cents    int64
	Currency string
}

// Cents builds a Money value from minor units.
func Cents(cents int64, currency string) Money {
	return Money{Cents: cents, Currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: currency}
}

// Add returns m + other, guarding against mixed currencies.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Cents: m.Cents + other.Cents, Currency: m.Currency}, nil
}

// Sub returns m - other, guarding against mixed currencies.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Cents: m.Cents - other.Cents, Currency: m.Currency}, nil
}

// Min returns the smaller of m and other.
func (m Money) Min(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	if other.Cents < m.Cents {
		return other, nil
	}
	return m, nil
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents, Currency: m.Currency}
}

// MulPermille multiplies by rate/1000, rounding half away from zero.
func (m Money) MulPermille(rate int64) Money {
	return Money{Cents: roundDiv(m.Cents*rate, 1000), Currency: m.Currency}
}

// MulPercent multiplies by pct/100, rounding half away from zero.
func (m Money) MulPercent(pct int64) Money {
	return Money{Cents: roundDiv(m.Cents*pct, 100), Currency: m.Currency}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// String formats the amount as a two-place decimal with its currency,
// e.g. "15000.00 USD".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, m.Currency)
}

// roundDiv divides numerator by denominator rounding half away from
// zero, so 499.5 cents becomes 500 and -499.5 becomes -500.
func roundDiv(numerator, denominator int64) int64 {
	if numerator >= 0 {
		return (numerator + denominator/2) / denominator
	}
	return -((-numerator + denominator/2) / denominator)
}
