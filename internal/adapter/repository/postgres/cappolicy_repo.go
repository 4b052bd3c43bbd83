package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brokerops/commissions/internal/domain"
)

// CapPolicyRepository implements usecase.CapPolicyRepository.
type CapPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewCapPolicyRepository creates a new CapPolicyRepository.
func NewCapPolicyRepository(pool *pgxpool.Pool) *CapPolicyRepository {
	return &CapPolicyRepository{pool: pool}
}

// Get retrieves the active policy for an agent.
func (r *CapPolicyRepository) Get(ctx context.Context, agentID string) (*domain.CapPolicy, error) {
	query := `
		SELECT agent_id, fee_year_start, annual_cap_cents, currency, created_at, updated_at
		FROM cap_policies
		WHERE agent_id = $1
	`

	var (
		policy   domain.CapPolicy
		cap      int64
		currency string
	)
	err := r.pool.QueryRow(ctx, query, agentID).Scan(
		&policy.AgentID,
		&policy.FeeYearStart,
		&cap,
		&currency,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCapPolicyNotFound
		}
		return nil, err
	}

	policy.AnnualCap = domain.Cents(cap, currency)
	return &policy, nil
}

// Upsert stores the policy, replacing any existing one for the agent.
func (r *CapPolicyRepository) Upsert(ctx context.Context, policy *domain.CapPolicy) error {
	query := `
		INSERT INTO cap_policies (agent_id, fee_year_start, annual_cap_cents, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (agent_id) DO UPDATE SET
			fee_year_start = EXCLUDED.fee_year_start,
			annual_cap_cents = EXCLUDED.annual_cap_cents,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		policy.AgentID,
		policy.FeeYearStart,
		policy.AnnualCap.Cents,
		policy.AnnualCap.Currency,
		policy.CreatedAt,
		policy.UpdatedAt,
	)
	return err
}
