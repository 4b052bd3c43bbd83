package domain

import "errors"

var (
	// Validation errors
	ErrCurrencyMismatch = errors.New("amounts are in different currencies")

	// Ledger errors
	ErrDuplicateDeal  = errors.New("deal already split")
	ErrRecordNotFound = errors.New("commission record not found")

	// Payout errors
	ErrLineItemNotFound  = errors.New("payout line item not found")
	ErrInvalidTransition = errors.New("payout line item is not in the required state")
	ErrBatchNotFound     = errors.New("payout batch not found")

	// Cap errors
	ErrCapPolicyNotFound = errors.New("no cap policy configured for agent")
	ErrInvalidCapAmount  = errors.New("annual cap must not be negative")

	// Payment collaborator errors
	ErrCollaboratorUnavailable = errors.New("payment collaborator unreachable")
	ErrAmbiguousOutcome        = errors.New("payment outcome unknown, pending reconciliation")
)
