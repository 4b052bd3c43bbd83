package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockCommissionRepository is an in-memory CommissionRepository.
type MockCommissionRepository struct {
	mu      sync.RWMutex
	byDeal  map[string]*domain.CommissionRecord
	records []*domain.CommissionRecord

	CreateFunc      func(ctx context.Context, tx usecase.Transaction, record *domain.CommissionRecord) error
	GetByDealIDFunc func(ctx context.Context, dealID string) (*domain.CommissionRecord, error)
	ListByAgentFunc func(ctx context.Context, agentID string, from, to time.Time) ([]*domain.CommissionRecord, error)
	HasReversalFunc func(ctx context.Context, tx usecase.Transaction, dealID string) (bool, error)
}

func NewMockCommissionRepository() *MockCommissionRepository {
	return &MockCommissionRepository{byDeal: make(map[string]*domain.CommissionRecord)}
}

func (m *MockCommissionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.CommissionRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.IsReversal() {
		// Mirrors the partial unique index on reversal rows.
		for _, rec := range m.records {
			if rec.DealID == record.DealID && rec.IsReversal() {
				return domain.ErrAlreadyReversed
			}
		}
	} else {
		if _, exists := m.byDeal[record.DealID]; exists {
			return domain.ErrDuplicateDeal
		}
		m.byDeal[record.DealID] = record
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockCommissionRepository) GetByDealID(ctx context.Context, dealID string) (*domain.CommissionRecord, error) {
	if m.GetByDealIDFunc != nil {
		return m.GetByDealIDFunc(ctx, dealID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.byDeal[dealID]; ok {
		return rec, nil
	}
	return nil, domain.ErrRecordNotFound
}

func (m *MockCommissionRepository) GetByID(ctx context.Context, id string) (*domain.CommissionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (m *MockCommissionRepository) ListByAgent(ctx context.Context, agentID string, from, to time.Time) ([]*domain.CommissionRecord, error) {
	if m.ListByAgentFunc != nil {
		return m.ListByAgentFunc(ctx, agentID, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.CommissionRecord
	for _, rec := range m.records {
		if rec.AgentID == agentID && !rec.CreatedAt.Before(from) && rec.CreatedAt.Before(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockCommissionRepository) HasReversal(ctx context.Context, tx usecase.Transaction, dealID string) (bool, error) {
	if m.HasReversalFunc != nil {
		return m.HasReversalFunc(ctx, tx, dealID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.DealID == dealID && rec.IsReversal() {
			return true, nil
		}
	}
	return false, nil
}

// Records returns every stored record, append order.
func (m *MockCommissionRepository) Records() []*domain.CommissionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.CommissionRecord(nil), m.records...)
}

// MockCapRepository is an in-memory CapRepository.
type MockCapRepository struct {
	mu      sync.Mutex
	entries map[string]domain.CapLedgerEntry

	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction, agentID string, feeYear int, currency string) (domain.CapLedgerEntry, error)
	UpdateFunc       func(ctx context.Context, tx usecase.Transaction, entry domain.CapLedgerEntry) error
}

func NewMockCapRepository() *MockCapRepository {
	return &MockCapRepository{entries: make(map[string]domain.CapLedgerEntry)}
}

func capKey(agentID string, feeYear int) string {
	return agentID + "/" + time.Date(feeYear, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}

func (m *MockCapRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, agentID string, feeYear int, currency string) (domain.CapLedgerEntry, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, agentID, feeYear, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := capKey(agentID, feeYear)
	if entry, ok := m.entries[key]; ok {
		return entry, nil
	}
	entry := domain.CapLedgerEntry{AgentID: agentID, FeeYear: feeYear, Collected: domain.Zero(currency)}
	m.entries[key] = entry
	return entry, nil
}

func (m *MockCapRepository) Update(ctx context.Context, tx usecase.Transaction, entry domain.CapLedgerEntry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[capKey(entry.AgentID, entry.FeeYear)] = entry
	return nil
}

func (m *MockCapRepository) Get(ctx context.Context, agentID string, feeYear int) (domain.CapLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[capKey(agentID, feeYear)]; ok {
		return entry, nil
	}
	return domain.CapLedgerEntry{AgentID: agentID, FeeYear: feeYear}, nil
}

// MockCapPolicyRepository is an in-memory CapPolicyRepository.
type MockCapPolicyRepository struct {
	mu       sync.RWMutex
	policies map[string]*domain.CapPolicy

	GetFunc func(ctx context.Context, agentID string) (*domain.CapPolicy, error)
}

func NewMockCapPolicyRepository() *MockCapPolicyRepository {
	return &MockCapPolicyRepository{policies: make(map[string]*domain.CapPolicy)}
}

func (m *MockCapPolicyRepository) Get(ctx context.Context, agentID string) (*domain.CapPolicy, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, agentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.policies[agentID]; ok {
		return p, nil
	}
	return nil, domain.ErrCapPolicyNotFound
}

func (m *MockCapPolicyRepository) Upsert(ctx context.Context, policy *domain.CapPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[policy.AgentID] = policy
	return nil
}

// MockPayoutRepository is an in-memory PayoutRepository whose state
// transitions are real compare-and-swap updates under a mutex, so
// claim races behave like the conditional updates in Postgres.
type MockPayoutRepository struct {
	mu    sync.Mutex
	items map[string]*domain.PayoutLineItem
	order []string

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, item *domain.PayoutLineItem) error
	ClaimReadyFunc      func(ctx context.Context, tx usecase.Transaction, batchID string, now time.Time) ([]*domain.PayoutLineItem, error)
	TransitionStateFunc func(ctx context.Context, tx usecase.Transaction, id string, from, to domain.LineItemState, ref *string, now time.Time) error
}

func NewMockPayoutRepository() *MockPayoutRepository {
	return &MockPayoutRepository{items: make(map[string]*domain.PayoutLineItem)}
}

func (m *MockPayoutRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.PayoutLineItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	m.items[item.ID] = &cp
	m.order = append(m.order, item.ID)
	return nil
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, id string) (*domain.PayoutLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, domain.ErrLineItemNotFound
}

func (m *MockPayoutRepository) ListByState(ctx context.Context, state domain.LineItemState, limit int) ([]*domain.PayoutLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.PayoutLineItem
	for _, id := range m.order {
		item := m.items[id]
		if item.State == state {
			cp := *item
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockPayoutRepository) ClaimReady(ctx context.Context, tx usecase.Transaction, batchID string, now time.Time) ([]*domain.PayoutLineItem, error) {
	if m.ClaimReadyFunc != nil {
		return m.ClaimReadyFunc(ctx, tx, batchID, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var claimed []*domain.PayoutLineItem
	for _, id := range m.order {
		item := m.items[id]
		if item.State != domain.LineItemReady {
			continue
		}
		item.State = domain.LineItemSubmitted
		b := batchID
		item.BatchID = &b
		item.LastTransitionAt = now
		cp := *item
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func (m *MockPayoutRepository) TransitionState(ctx context.Context, tx usecase.Transaction, id string, from, to domain.LineItemState, ref *string, now time.Time) error {
	if m.TransitionStateFunc != nil {
		return m.TransitionStateFunc(ctx, tx, id, from, to, ref, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return domain.ErrLineItemNotFound
	}
	if item.State != from {
		return domain.ErrInvalidTransition
	}
	item.State = to
	if ref != nil {
		item.TransferReference = ref
	}
	item.LastTransitionAt = now
	return nil
}

func (m *MockPayoutRepository) IncrementAttempts(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.AttemptCount++
		return nil
	}
	return domain.ErrLineItemNotFound
}

// Item returns a copy of the stored item.
func (m *MockPayoutRepository) Item(id string) *domain.PayoutLineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp
	}
	return nil
}

// MockBatchRepository is an in-memory BatchRepository.
type MockBatchRepository struct {
	mu      sync.Mutex
	batches map[string]*domain.PayoutBatch
}

func NewMockBatchRepository() *MockBatchRepository {
	return &MockBatchRepository{batches: make(map[string]*domain.PayoutBatch)}
}

func (m *MockBatchRepository) Create(ctx context.Context, tx usecase.Transaction, batch *domain.PayoutBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *batch
	m.batches[batch.ID] = &cp
	return nil
}

func (m *MockBatchRepository) SetItemCount(ctx context.Context, tx usecase.Transaction, id string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return domain.ErrBatchNotFound
	}
	b.ItemCount = count
	return nil
}

func (m *MockBatchRepository) Resolve(ctx context.Context, batch *domain.PayoutBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *batch
	m.batches[batch.ID] = &cp
	return nil
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id string) (*domain.PayoutBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.batches[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrBatchNotFound
}

// Count returns how many batches were created.
func (m *MockBatchRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}

// Events returns all captured events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockAuditRepository captures audit logs.
type MockAuditRepository struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditLog(nil), m.logs...), nil
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockRetrier runs the operation once.
type MockRetrier struct{}

func (MockRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
