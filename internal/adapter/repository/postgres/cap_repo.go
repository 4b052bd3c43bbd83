package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// CapRepository implements usecase.CapRepository. Rows are keyed by
// (agent_id, fee_year); splits serialize on the row lock taken in
// GetForUpdate.
type CapRepository struct {
	pool *pgxpool.Pool
}

// NewCapRepository creates a new CapRepository.
func NewCapRepository(pool *pgxpool.Pool) *CapRepository {
	return &CapRepository{pool: pool}
}

// GetForUpdate locks and returns the entry for agent+feeYear, creating
// a zeroed entry on first access so the lock always has a row to land on.
func (r *CapRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, agentID string, feeYear int, currency string) (domain.CapLedgerEntry, error) {
	q := target(r.pool, tx)

	insert := `
		INSERT INTO cap_ledger (agent_id, fee_year, collected_cents, currency, updated_at)
		VALUES ($1, $2, 0, $3, $4)
		ON CONFLICT (agent_id, fee_year) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, agentID, feeYear, currency, time.Now().UTC()); err != nil {
		return domain.CapLedgerEntry{}, err
	}

	query := `
		SELECT agent_id, fee_year, collected_cents, currency, updated_at
		FROM cap_ledger
		WHERE agent_id = $1 AND fee_year = $2
		FOR UPDATE
	`
	return scanCapEntry(q.QueryRow(ctx, query, agentID, feeYear))
}

// Update writes the new collected total for a locked entry.
func (r *CapRepository) Update(ctx context.Context, tx usecase.Transaction, entry domain.CapLedgerEntry) error {
	query := `
		UPDATE cap_ledger
		SET collected_cents = $3, updated_at = $4
		WHERE agent_id = $1 AND fee_year = $2
	`

	_, err := target(r.pool, tx).Exec(ctx, query,
		entry.AgentID,
		entry.FeeYear,
		entry.Collected.Cents,
		time.Now().UTC(),
	)
	return err
}

// Get reads an entry without locking. A missing fee year reads as zero
// collected.
func (r *CapRepository) Get(ctx context.Context, agentID string, feeYear int) (domain.CapLedgerEntry, error) {
	query := `
		SELECT agent_id, fee_year, collected_cents, currency, updated_at
		FROM cap_ledger
		WHERE agent_id = $1 AND fee_year = $2
	`

	entry, err := scanCapEntry(r.pool.QueryRow(ctx, query, agentID, feeYear))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CapLedgerEntry{AgentID: agentID, FeeYear: feeYear}, nil
	}
	return entry, err
}

func scanCapEntry(row pgx.Row) (domain.CapLedgerEntry, error) {
	var (
		entry     domain.CapLedgerEntry
		collected int64
		currency  string
	)

	err := row.Scan(&entry.AgentID, &entry.FeeYear, &collected, &currency, &entry.UpdatedAt)
	if err != nil {
		return domain.CapLedgerEntry{}, err
	}

	entry.Collected = domain.Cents(collected, currency)
	return entry, nil
}
