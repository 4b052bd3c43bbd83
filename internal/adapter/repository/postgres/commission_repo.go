package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// CommissionRepository implements usecase.CommissionRepository against
// the append-only commission_records table.
type CommissionRepository struct {
	pool *pgxpool.Pool
}

// NewCommissionRepository creates a new CommissionRepository.
func NewCommissionRepository(pool *pgxpool.Pool) *CommissionRepository {
	return &CommissionRepository{pool: pool}
}

const commissionColumns = `
	id, deal_id, agent_id, gross_cents, broker_net_cents, agent_net_cents,
	currency, capped, reversed_record_id, created_at
`

// Create appends a record. Partial unique indexes on deal_id turn
// concurrent re-submissions into ErrDuplicateDeal and concurrent
// reversals into ErrAlreadyReversed.
func (r *CommissionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.CommissionRecord) error {
	query := `
		INSERT INTO commission_records (` + commissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := target(r.pool, tx).Exec(ctx, query,
		record.ID,
		record.DealID,
		record.AgentID,
		record.Gross.Cents,
		record.BrokerNet.Cents,
		record.AgentNet.Cents,
		record.Gross.Currency,
		record.CappedThisDeal,
		record.ReversedRecordID,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			if record.IsReversal() {
				return domain.ErrAlreadyReversed
			}
			return domain.ErrDuplicateDeal
		}
		return err
	}

	return nil
}

// GetByDealID retrieves the original (non-reversal) record for a deal.
func (r *CommissionRepository) GetByDealID(ctx context.Context, dealID string) (*domain.CommissionRecord, error) {
	query := `
		SELECT ` + commissionColumns + `
		FROM commission_records
		WHERE deal_id = $1 AND reversed_record_id IS NULL
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, dealID))
}

// GetByID retrieves a record by ID.
func (r *CommissionRepository) GetByID(ctx context.Context, id string) (*domain.CommissionRecord, error) {
	query := `
		SELECT ` + commissionColumns + `
		FROM commission_records
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// ListByAgent returns an agent's records within [from, to), oldest first.
func (r *CommissionRepository) ListByAgent(ctx context.Context, agentID string, from, to time.Time) ([]*domain.CommissionRecord, error) {
	query := `
		SELECT ` + commissionColumns + `
		FROM commission_records
		WHERE agent_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, agentID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.CommissionRecord
	for rows.Next() {
		record, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// HasReversal reports whether an offsetting record exists for dealID.
func (r *CommissionRepository) HasReversal(ctx context.Context, tx usecase.Transaction, dealID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM commission_records
			WHERE deal_id = $1 AND reversed_record_id IS NOT NULL
		)
	`

	var exists bool
	if err := target(r.pool, tx).QueryRow(ctx, query, dealID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *CommissionRepository) scanOne(row pgx.Row) (*domain.CommissionRecord, error) {
	var (
		record   domain.CommissionRecord
		gross    int64
		broker   int64
		agent    int64
		currency string
	)

	err := row.Scan(
		&record.ID,
		&record.DealID,
		&record.AgentID,
		&gross,
		&broker,
		&agent,
		&currency,
		&record.CappedThisDeal,
		&record.ReversedRecordID,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	record.Gross = domain.Cents(gross, currency)
	record.BrokerNet = domain.Cents(broker, currency)
	record.AgentNet = domain.Cents(agent, currency)

	return &record, nil
}
