package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/infrastructure/metrics"
)

// CommissionUseCase ingests closed deals: it computes the conserved
// split, appends the ledger record, updates the cap ledger and enqueues
// the payout line item as one atomic unit.
type CommissionUseCase struct {
	txManager      TransactionManager
	commissionRepo CommissionRepository
	capRepo        CapRepository
	capPolicyRepo  CapPolicyRepository
	payoutRepo     PayoutRepository
	outboxRepo     OutboxRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	retrier        Retrier
	metrics        *metrics.Metrics

	defaultPolicy DefaultCapPolicy
}

// DefaultCapPolicy is the fallback applied to agents without a stored
// policy: a calendar-year fee year with a configured cap amount.
type DefaultCapPolicy struct {
	AnnualCapCents int64
}

// NewCommissionUseCase creates a new CommissionUseCase.
func NewCommissionUseCase(
	txManager TransactionManager,
	commissionRepo CommissionRepository,
	capRepo CapRepository,
	capPolicyRepo CapPolicyRepository,
	payoutRepo PayoutRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
	defaultPolicy DefaultCapPolicy,
) *CommissionUseCase {
	return &CommissionUseCase{
		txManager:      txManager,
		commissionRepo: commissionRepo,
		capRepo:        capRepo,
		capPolicyRepo:  capPolicyRepo,
		payoutRepo:     payoutRepo,
		outboxRepo:     outboxRepo,
		auditRepo:      auditRepo,
		idGen:          idGen,
		retrier:        retrier,
		metrics:        m,
		defaultPolicy:  defaultPolicy,
	}
}

// SubmitClosedDeal is the sole ingestion entry point. Validation and
// the duplicate-deal check happen before any state change; the ledger
// append, cap commit and line-item insert either all apply or none do.
func (uc *CommissionUseCase) SubmitClosedDeal(ctx context.Context, input domain.CommissionInput) (*domain.CommissionRecord, error) {
	start := time.Now()

	if err := input.Validate(); err != nil {
		if uc.metrics != nil {
			uc.metrics.SubmitErrors.WithLabelValues("validation").Inc()
		}
		return nil, err
	}

	policy, err := uc.policyFor(ctx, input)
	if err != nil {
		return nil, err
	}

	var record *domain.CommissionRecord
	op := func() error {
		var opErr error
		record, opErr = uc.submitOnce(ctx, input, policy)
		return opErr
	}

	// The retrier repeats only on deadlock/serialization failures;
	// the duplicate-deal guard makes the whole transaction safe to
	// re-run.
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		if uc.metrics != nil && errors.Is(err, domain.ErrDuplicateDeal) {
			uc.metrics.SubmitErrors.WithLabelValues("duplicate_deal").Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.DealsSubmitted.Inc()
		uc.metrics.SubmitDuration.Observe(time.Since(start).Seconds())
		uc.metrics.CommissionGross.Observe(float64(record.Gross.Cents))
		if record.CappedThisDeal {
			uc.metrics.SplitsCapped.Inc()
		}
	}

	return record, nil
}

func (uc *CommissionUseCase) submitOnce(ctx context.Context, input domain.CommissionInput, policy domain.CapPolicy) (*domain.CommissionRecord, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	currency := input.SalePrice.Currency
	feeYear := domain.FeeYearFor(policy, input.CloseDate)

	var capState domain.CapLedgerEntry
	if input.AgentSplitPercent == 100 {
		// Fast path: the broker retains nothing, so the cap row is
		// neither locked nor written.
		capState = domain.CapLedgerEntry{AgentID: input.AgentID, FeeYear: feeYear, Collected: domain.Zero(currency)}
	} else {
		capState, err = uc.capRepo.GetForUpdate(txCtx, tx, input.AgentID, feeYear, currency)
		if err != nil {
			return nil, err
		}
	}

	result, err := domain.ComputeSplit(uc.idGen.Generate(), input, policy, capState, now)
	if err != nil {
		return nil, err
	}
	record := result.Record

	// The unique deal_id constraint is the backstop; Create maps its
	// violation to ErrDuplicateDeal so re-submissions change nothing.
	if err := uc.commissionRepo.Create(txCtx, tx, record); err != nil {
		return nil, err
	}

	if record.BrokerNet.IsPositive() {
		if err := uc.capRepo.Update(txCtx, tx, result.CapState); err != nil {
			return nil, err
		}
	}

	item := &domain.PayoutLineItem{
		ID:                 uc.idGen.Generate(),
		CommissionRecordID: record.ID,
		AgentID:            record.AgentID,
		Amount:             record.AgentNet,
		State:              domain.LineItemPending,
		LastTransitionAt:   now,
		CreatedAt:          now,
	}
	if err := uc.payoutRepo.Create(txCtx, tx, item); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   record.DealID,
		AggregateType: domain.AggregateTypeDeal,
		EventType:     domain.EventTypeDealRecorded,
		Payload: map[string]any{
			"record_id":        record.ID,
			"deal_id":          record.DealID,
			"agent_id":         record.AgentID,
			"gross_cents":      record.Gross.Cents,
			"broker_net_cents": record.BrokerNet.Cents,
			"agent_net_cents":  record.AgentNet.Cents,
			"currency":         currency,
			"capped":           record.CappedThisDeal,
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
			Action:       string(domain.AuditActionDealSubmit),
			ResourceType: "commission_record",
			ResourceID:   record.ID,
			AfterState:   domain.MarshalState(record),
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

	return record, nil
}

// ReverseDeal appends the offsetting record for an already-split deal.
// Reversals never touch the cap ledger and never enqueue a payout.
func (uc *CommissionUseCase) ReverseDeal(ctx context.Context, dealID string) (*domain.CommissionRecord, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	original, err := uc.commissionRepo.GetByDealID(txCtx, dealID)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	reversed, err := uc.commissionRepo.HasReversal(txCtx, tx, dealID)
	if err != nil {
		return nil, err
	}
	if reversed {
		return nil, domain.ErrAlreadyReversed
	}

	now := time.Now().UTC()
	reversal, err := original.Reversal(uc.idGen.Generate(), now)
	if err != nil {
		return nil, err
	}

	if err := uc.commissionRepo.Create(txCtx, tx, reversal); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   dealID,
		AggregateType: domain.AggregateTypeDeal,
		EventType:     domain.EventTypeDealReversed,
		Payload: map[string]any{
			"record_id":          reversal.ID,
			"deal_id":            dealID,
			"reversed_record_id": original.ID,
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
			Action:       string(domain.AuditActionDealReverse),
			ResourceType: "commission_record",
			ResourceID:   reversal.ID,
			BeforeState:  domain.MarshalState(original),
			AfterState:   domain.MarshalState(reversal),
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
		uc.metrics.DealsReversed.Inc()
	}

	return reversal, nil
}

// policyFor resolves the active cap policy for the deal's agent,
// falling back to the configured calendar-year default.
func (uc *CommissionUseCase) policyFor(ctx context.Context, input domain.CommissionInput) (domain.CapPolicy, error) {
	policy, err := uc.capPolicyRepo.Get(ctx, input.AgentID)
	if err == nil {
		return *policy, nil
	}
	if !errors.Is(err, domain.ErrCapPolicyNotFound) {
		return domain.CapPolicy{}, err
	}

	return domain.CapPolicy{
		AgentID:      input.AgentID,
		FeeYearStart: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		AnnualCap:    domain.Cents(uc.defaultPolicy.AnnualCapCents, input.SalePrice.Currency),
	}, nil
}
