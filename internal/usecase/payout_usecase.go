package usecase

import (
	"context"
	"time"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/infrastructure/metrics"
)

// PayoutUseCase operates the payout queue: releasing items for payment
// and listing them for display. Claiming and resolving live with the
// settlement orchestrator.
type PayoutUseCase struct {
	txManager  TransactionManager
	payoutRepo PayoutRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewPayoutUseCase creates a new PayoutUseCase.
func NewPayoutUseCase(
	txManager TransactionManager,
	payoutRepo PayoutRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *PayoutUseCase {
	return &PayoutUseCase{
		txManager:  txManager,
		payoutRepo: payoutRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		metrics:    m,
	}
}

// Release moves a line item into Ready. Pending items move on first
// release; Failed items move back for an explicit operator retry.
func (uc *PayoutUseCase) Release(ctx context.Context, id string) (*domain.PayoutLineItem, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	item, err := uc.payoutRepo.GetByID(txCtx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.GuardTransition(item.State, domain.LineItemReady); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	from := item.State
	if err := uc.payoutRepo.TransitionState(txCtx, tx, id, from, domain.LineItemReady, nil, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   item.ID,
		AggregateType: domain.AggregateTypePayout,
		EventType:     domain.EventTypePayoutReleased,
		Payload: map[string]any{
			"line_item_id": item.ID,
			"agent_id":     item.AgentID,
			"amount_cents": item.Amount.Cents,
			"currency":     item.Amount.Currency,
			"from_state":   string(from),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        ActorFromContext(ctx),
			Action:       string(domain.AuditActionPayoutRelease),
			ResourceType: "payout_line_item",
			ResourceID:   item.ID,
			BeforeState:  domain.JSON{"state": string(from)},
			AfterState:   domain.JSON{"state": string(domain.LineItemReady)},
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PayoutsReleased.Inc()
	}

	item.State = domain.LineItemReady
	item.LastTransitionAt = now

	return item, nil
}

// Get retrieves a line item by ID.
func (uc *PayoutUseCase) Get(ctx context.Context, id string) (*domain.PayoutLineItem, error) {
	return uc.payoutRepo.GetByID(ctx, id)
}

// ListReady returns line items currently eligible for settlement,
// oldest transition first.
func (uc *PayoutUseCase) ListReady(ctx context.Context, limit int) ([]*domain.PayoutLineItem, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return uc.payoutRepo.ListByState(ctx, domain.LineItemReady, limit)
}

// ListByState lists line items in an arbitrary state for display.
func (uc *PayoutUseCase) ListByState(ctx context.Context, state domain.LineItemState, limit int) ([]*domain.PayoutLineItem, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return uc.payoutRepo.ListByState(ctx, state, limit)
}
