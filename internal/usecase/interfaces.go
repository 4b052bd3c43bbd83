package usecase

import (
	"context"
	"time"

	"github.com/brokerops/commissions/internal/domain"
)

// CommissionRepository defines data access for the append-only ledger.
type CommissionRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.CommissionRecord) error
	GetByDealID(ctx context.Context, dealID string) (*domain.CommissionRecord, error)
	GetByID(ctx context.Context, id string) (*domain.CommissionRecord, error)
	// ListByAgent returns records oldest first within [from, to).
	ListByAgent(ctx context.Context, agentID string, from, to time.Time) ([]*domain.CommissionRecord, error)
	// HasReversal reports whether an offsetting record exists for dealID.
	HasReversal(ctx context.Context, tx Transaction, dealID string) (bool, error)
}

// CapRepository defines data access for the per-agent fee-year cap ledger.
type CapRepository interface {
	// GetForUpdate locks and returns the entry for agent+feeYear,
	// creating a zeroed entry on first access.
	GetForUpdate(ctx context.Context, tx Transaction, agentID string, feeYear int, currency string) (domain.CapLedgerEntry, error)
	Update(ctx context.Context, tx Transaction, entry domain.CapLedgerEntry) error
	Get(ctx context.Context, agentID string, feeYear int) (domain.CapLedgerEntry, error)
}

// CapPolicyRepository defines data access for per-agent cap policies.
type CapPolicyRepository interface {
	Get(ctx context.Context, agentID string) (*domain.CapPolicy, error)
	Upsert(ctx context.Context, policy *domain.CapPolicy) error
}

// PayoutRepository defines data access for payout line items. State
// transitions are conditional updates keyed on the current state.
type PayoutRepository interface {
	Create(ctx context.Context, tx Transaction, item *domain.PayoutLineItem) error
	GetByID(ctx context.Context, id string) (*domain.PayoutLineItem, error)
	ListByState(ctx context.Context, state domain.LineItemState, limit int) ([]*domain.PayoutLineItem, error)
	// ClaimReady atomically moves every Ready item into batchID
	// (Ready -> Submitted) and returns the claimed items. Items another
	// claimer wins are simply absent from the result.
	ClaimReady(ctx context.Context, tx Transaction, batchID string, now time.Time) ([]*domain.PayoutLineItem, error)
	// TransitionState applies a single compare-and-swap transition.
	// Returns domain.ErrInvalidTransition if the item is not in from.
	TransitionState(ctx context.Context, tx Transaction, id string, from, to domain.LineItemState, ref *string, now time.Time) error
	// IncrementAttempts bumps the attempt counter on a failed item.
	IncrementAttempts(ctx context.Context, tx Transaction, id string) error
}

// BatchRepository defines data access for payout batches.
type BatchRepository interface {
	Create(ctx context.Context, tx Transaction, batch *domain.PayoutBatch) error
	// SetItemCount records how many items were claimed into the batch.
	SetItemCount(ctx context.Context, tx Transaction, id string, count int) error
	Resolve(ctx context.Context, batch *domain.PayoutBatch) error
	GetByID(ctx context.Context, id string) (*domain.PayoutBatch, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// TransferStatus is the definitive answer from the payment collaborator.
type TransferStatus string

const (
	TransferAccepted TransferStatus = "accepted"
	TransferRejected TransferStatus = "rejected"
)

// TransferResult is the response to a transfer call.
type TransferResult struct {
	Status            TransferStatus
	TransferReference string
}

// LookupStatus is the reconciliation answer for an idempotency token.
type LookupStatus string

const (
	LookupPaid    LookupStatus = "paid"
	LookupFailed  LookupStatus = "failed"
	LookupUnknown LookupStatus = "unknown"
)

// PaymentGateway is the narrow interface over the external payment
// rail. Transfer is safe to repeat for the same idempotency token;
// Lookup reconciles a token whose transfer outcome was ambiguous.
type PaymentGateway interface {
	Transfer(ctx context.Context, destination string, amount domain.Money, idempotencyToken string) (*TransferResult, error)
	Lookup(ctx context.Context, idempotencyToken string) (LookupStatus, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations for display reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage for the HTTP layer.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
