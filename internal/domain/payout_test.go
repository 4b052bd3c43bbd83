package domain

import (
	"errors"
	"testing"
)

func TestLineItemTransitions(t *testing.T) {
	tests := []struct {
		from    LineItemState
		to      LineItemState
		allowed bool
	}{
		{LineItemPending, LineItemReady, true},
		{LineItemReady, LineItemSubmitted, true},
		{LineItemSubmitted, LineItemPaid, true},
		{LineItemSubmitted, LineItemFailed, true},
		{LineItemFailed, LineItemReady, true},

		{LineItemPending, LineItemSubmitted, false},
		{LineItemPending, LineItemPaid, false},
		{LineItemReady, LineItemPaid, false},
		{LineItemReady, LineItemPending, false},
		{LineItemSubmitted, LineItemReady, false},
		{LineItemPaid, LineItemReady, false},
		{LineItemPaid, LineItemFailed, false},
		{LineItemFailed, LineItemSubmitted, false},
	}

	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		if got != tt.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}

		err := GuardTransition(tt.from, tt.to)
		if tt.allowed && err != nil {
			t.Errorf("GuardTransition(%s, %s) = %v, want nil", tt.from, tt.to, err)
		}
		if !tt.allowed && !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("GuardTransition(%s, %s) = %v, want ErrInvalidTransition", tt.from, tt.to, err)
		}
	}
}

func TestSettlementToken(t *testing.T) {
	a := SettlementToken("item-1", "batch-1")
	b := SettlementToken("item-1", "batch-1")
	c := SettlementToken("item-1", "batch-2")

	if a != b {
		t.Error("token must be deterministic for the same item and batch")
	}
	if a == c {
		t.Error("token must differ across batches")
	}
}
