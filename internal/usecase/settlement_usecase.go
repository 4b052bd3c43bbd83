package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/infrastructure/metrics"
)

// SettlementUseCase executes settlement batches against the payment
// collaborator. A run first reconciles items stranded in Submitted by a
// prior run (lookup by idempotency token, never a fresh transfer), then
// claims every Ready item into a new batch and transfers each exactly
// once.
type SettlementUseCase struct {
	txManager  TransactionManager
	payoutRepo PayoutRepository
	batchRepo  BatchRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	gateway    PaymentGateway
	idGen      IDGenerator
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	transferTimeout time.Duration
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	payoutRepo PayoutRepository,
	batchRepo BatchRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	gateway PaymentGateway,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager:       txManager,
		payoutRepo:      payoutRepo,
		batchRepo:       batchRepo,
		outboxRepo:      outboxRepo,
		auditRepo:       auditRepo,
		gateway:         gateway,
		idGen:           idGen,
		logger:          logger,
		metrics:         m,
		transferTimeout: DefaultTransferTimeout,
	}
}

// BatchSummary is the result of one settlement run.
type BatchSummary struct {
	BatchID    string
	Outcome    domain.BatchOutcome
	Claimed    int
	Paid       int
	Failed     int
	Ambiguous  int
	Reconciled int
}

// RunBatch reconciles, claims and settles. See the method comments on
// each phase; the claim is the single point of contention and each
// per-item resolve is durable before the next transfer is attempted.
func (uc *SettlementUseCase) RunBatch(ctx context.Context) (*BatchSummary, error) {
	start := time.Now()

	reconciled, err := uc.reconcileStale(ctx)
	if err != nil {
		// Reconciliation trouble must not block settling fresh items;
		// stranded ones stay Submitted and are retried next run.
		uc.logger.Warn().Err(err).Msg("reconciliation pass incomplete")
	}

	batch, items, err := uc.claimReady(ctx)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{Reconciled: reconciled}
	if batch == nil {
		// Nothing Ready: no batch is created for an empty run.
		summary.Outcome = domain.BatchCompleted
		return summary, nil
	}

	summary.BatchID = batch.ID
	summary.Claimed = len(items)

	for _, item := range items {
		outcome := uc.settleItem(ctx, batch.ID, item)
		switch outcome {
		case domain.LineItemPaid:
			summary.Paid++
		case domain.LineItemFailed:
			summary.Failed++
		default:
			summary.Ambiguous++
		}
	}

	batch.PaidCount = summary.Paid
	batch.FailedCount = summary.Failed
	batch.PendingCount = summary.Ambiguous
	if summary.Paid == summary.Claimed {
		batch.Outcome = domain.BatchCompleted
	} else {
		batch.Outcome = domain.BatchCompletedWithFailures
	}
	now := time.Now().UTC()
	batch.ResolvedAt = &now

	if err := uc.batchRepo.Resolve(ctx, batch); err != nil {
		return nil, err
	}
	summary.Outcome = batch.Outcome

	uc.emitBatchCompleted(ctx, batch)

	if uc.metrics != nil {
		uc.metrics.BatchesRun.Inc()
		uc.metrics.BatchItemsClaimed.Observe(float64(summary.Claimed))
		uc.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("batch_id", batch.ID).
		Str("outcome", string(batch.Outcome)).
		Int("claimed", summary.Claimed).
		Int("paid", summary.Paid).
		Int("failed", summary.Failed).
		Int("ambiguous", summary.Ambiguous).
		Msg("settlement batch resolved")

	return summary, nil
}

// GetBatch retrieves a batch by ID.
func (uc *SettlementUseCase) GetBatch(ctx context.Context, id string) (*domain.PayoutBatch, error) {
	return uc.batchRepo.GetByID(ctx, id)
}

// claimReady atomically moves every Ready item into a new InFlight
// batch. The Ready -> Submitted transition is a conditional update per
// item, so concurrent runs race safely: each item lands in exactly one
// batch. The claim commits before any transfer call is made.
//
// The batch row is inserted before the claim because the line items'
// batch_id column references payout_batches and the constraint is
// checked per statement.
func (uc *SettlementUseCase) claimReady(ctx context.Context) (*domain.PayoutBatch, []*domain.PayoutLineItem, error) {
	// An empty queue opens no transaction and leaves no batch row.
	ready, err := uc.payoutRepo.ListByState(ctx, domain.LineItemReady, 1)
	if err != nil {
		return nil, nil, err
	}
	if len(ready) == 0 {
		return nil, nil, nil
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	batch := &domain.PayoutBatch{
		ID:          uc.idGen.Generate(),
		SubmittedAt: now,
		Outcome:     domain.BatchInFlight,
	}
	if err := uc.batchRepo.Create(txCtx, tx, batch); err != nil {
		return nil, nil, err
	}

	items, err := uc.payoutRepo.ClaimReady(txCtx, tx, batch.ID, now)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		// Another runner won every item between the check and the
		// claim; rolling back discards the batch row.
		return nil, nil, nil
	}

	batch.ItemCount = len(items)
	if err := uc.batchRepo.SetItemCount(txCtx, tx, batch.ID, batch.ItemCount); err != nil {
		return nil, nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        ActorFromContext(ctx),
			Action:       string(domain.AuditActionPayoutClaim),
			ResourceType: "payout_batch",
			ResourceID:   batch.ID,
			AfterState:   domain.JSON{"item_count": len(items)},
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, err
	}

	return batch, items, nil
}

// settleItem calls transfer exactly once for the item and records the
// outcome. Ambiguity (timeout, no response) leaves the item Submitted
// for reconciliation; it is never re-transferred while its status is
// unknown.
func (uc *SettlementUseCase) settleItem(ctx context.Context, batchID string, item *domain.PayoutLineItem) domain.LineItemState {
	token := domain.SettlementToken(item.ID, batchID)

	callCtx, cancel := context.WithTimeout(ctx, uc.transferTimeout)
	defer cancel()

	result, err := uc.gateway.Transfer(callCtx, item.AgentID, item.Amount, token)
	switch {
	case err == nil && result.Status == TransferAccepted:
		if uc.metrics != nil {
			uc.metrics.TransferOutcomes.WithLabelValues("accepted").Inc()
		}
		ref := result.TransferReference
		if resolveErr := uc.resolve(ctx, item, batchID, domain.LineItemPaid, &ref); resolveErr != nil {
			uc.logger.Error().Err(resolveErr).Str("line_item_id", item.ID).Msg("failed to record paid outcome")
			return domain.LineItemSubmitted
		}
		return domain.LineItemPaid

	case err == nil && result.Status == TransferRejected:
		if uc.metrics != nil {
			uc.metrics.TransferOutcomes.WithLabelValues("rejected").Inc()
		}
		if resolveErr := uc.resolve(ctx, item, batchID, domain.LineItemFailed, nil); resolveErr != nil {
			uc.logger.Error().Err(resolveErr).Str("line_item_id", item.ID).Msg("failed to record failed outcome")
			return domain.LineItemSubmitted
		}
		return domain.LineItemFailed

	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		if uc.metrics != nil {
			uc.metrics.TransferOutcomes.WithLabelValues("unavailable").Inc()
		}
		uc.logger.Warn().Str("line_item_id", item.ID).Msg("payment collaborator unreachable, item stays submitted")
		return domain.LineItemSubmitted

	default:
		// Timeout or transport ambiguity after the request may have
		// been sent: status unknown, reconcile by token next run.
		if uc.metrics != nil {
			uc.metrics.TransferOutcomes.WithLabelValues("ambiguous").Inc()
		}
		uc.logger.Warn().Err(err).Str("line_item_id", item.ID).Str("token", token).Msg("ambiguous transfer outcome")
		return domain.LineItemSubmitted
	}
}

// resolve durably applies Submitted -> Paid|Failed for one item, with
// its audit row and outbox event, before the orchestrator moves on.
func (uc *SettlementUseCase) resolve(ctx context.Context, item *domain.PayoutLineItem, batchID string, to domain.LineItemState, ref *string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	if err := uc.payoutRepo.TransitionState(txCtx, tx, item.ID, domain.LineItemSubmitted, to, ref, now); err != nil {
		return err
	}

	if to == domain.LineItemFailed {
		if err := uc.payoutRepo.IncrementAttempts(txCtx, tx, item.ID); err != nil {
			return err
		}
	}

	payload := map[string]any{
		"line_item_id": item.ID,
		"batch_id":     batchID,
		"state":        string(to),
	}
	if ref != nil {
		payload["transfer_reference"] = *ref
	}
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   item.ID,
		AggregateType: domain.AggregateTypePayout,
		EventType:     domain.EventTypePayoutResolved,
		Payload:       payload,
		CreatedAt:     now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        ActorFromContext(ctx),
			Action:       string(domain.AuditActionPayoutResolve),
			ResourceType: "payout_line_item",
			ResourceID:   item.ID,
			BeforeState:  domain.JSON{"state": string(domain.LineItemSubmitted)},
			AfterState:   domain.JSON{"state": string(to), "batch_id": batchID},
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.PayoutsResolved.WithLabelValues(string(to)).Inc()
	}

	return nil
}

// reconcileStale queries the collaborator by idempotency token for
// every item stranded in Submitted by an earlier run. A definitive
// answer resolves the item; unknown leaves it Submitted untouched.
func (uc *SettlementUseCase) reconcileStale(ctx context.Context) (int, error) {
	stale, err := uc.payoutRepo.ListByState(ctx, domain.LineItemSubmitted, ReconcileBatchLimit)
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for _, item := range stale {
		if item.BatchID == nil {
			// Submitted without a batch means a write was interrupted
			// mid-claim; nothing to look up, surface for the operator.
			uc.logger.Error().Str("line_item_id", item.ID).Msg("submitted item has no batch reference")
			continue
		}

		token := domain.SettlementToken(item.ID, *item.BatchID)

		callCtx, cancel := context.WithTimeout(ctx, uc.transferTimeout)
		status, err := uc.gateway.Lookup(callCtx, token)
		cancel()
		if err != nil {
			if uc.metrics != nil {
				uc.metrics.Reconciliations.WithLabelValues("error").Inc()
			}
			uc.logger.Warn().Err(err).Str("token", token).Msg("reconciliation lookup failed")
			continue
		}

		switch status {
		case LookupPaid:
			if err := uc.resolve(ctx, item, *item.BatchID, domain.LineItemPaid, nil); err != nil {
				return reconciled, err
			}
			reconciled++
			if uc.metrics != nil {
				uc.metrics.Reconciliations.WithLabelValues("paid").Inc()
			}
		case LookupFailed:
			if err := uc.resolve(ctx, item, *item.BatchID, domain.LineItemFailed, nil); err != nil {
				return reconciled, err
			}
			reconciled++
			if uc.metrics != nil {
				uc.metrics.Reconciliations.WithLabelValues("failed").Inc()
			}
		default:
			if uc.metrics != nil {
				uc.metrics.Reconciliations.WithLabelValues("unknown").Inc()
			}
		}
	}

	return reconciled, nil
}

func (uc *SettlementUseCase) emitBatchCompleted(ctx context.Context, batch *domain.PayoutBatch) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("batch completion event not emitted")
		return
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   batch.ID,
		AggregateType: domain.AggregateTypeBatch,
		EventType:     domain.EventTypeBatchCompleted,
		Payload: map[string]any{
			"batch_id":      batch.ID,
			"outcome":       string(batch.Outcome),
			"item_count":    batch.ItemCount,
			"paid_count":    batch.PaidCount,
			"failed_count":  batch.FailedCount,
			"pending_count": batch.PendingCount,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		uc.logger.Warn().Err(err).Msg("batch completion event not emitted")
		return
	}
	if err := tx.Commit(txCtx); err != nil {
		uc.logger.Warn().Err(err).Msg("batch completion event not emitted")
	}
}
