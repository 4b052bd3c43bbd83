package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds every ledger transaction.
	DefaultTransactionTimeout = 30 * time.Second

	// DefaultTransferTimeout bounds a single payment collaborator call.
	// No response inside this window is treated as an ambiguous outcome.
	DefaultTransferTimeout = 15 * time.Second

	// ReconcileBatchLimit caps how many stale Submitted items one
	// settlement run will reconcile before claiming new work.
	ReconcileBatchLimit = 500
)
