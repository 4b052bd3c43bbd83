package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// BatchRepository implements usecase.BatchRepository.
type BatchRepository struct {
	pool *pgxpool.Pool
}

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(pool *pgxpool.Pool) *BatchRepository {
	return &BatchRepository{pool: pool}
}

// Create inserts a new in-flight batch.
func (r *BatchRepository) Create(ctx context.Context, tx usecase.Transaction, batch *domain.PayoutBatch) error {
	query := `
		INSERT INTO payout_batches (
			id, submitted_at, outcome, item_count,
			paid_count, failed_count, pending_count, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := target(r.pool, tx).Exec(ctx, query,
		batch.ID,
		batch.SubmittedAt,
		batch.Outcome,
		batch.ItemCount,
		batch.PaidCount,
		batch.FailedCount,
		batch.PendingCount,
		batch.ResolvedAt,
	)
	return err
}

// SetItemCount records how many items were claimed into the batch.
func (r *BatchRepository) SetItemCount(ctx context.Context, tx usecase.Transaction, id string, count int) error {
	query := `UPDATE payout_batches SET item_count = $2 WHERE id = $1`

	_, err := target(r.pool, tx).Exec(ctx, query, id, count)
	return err
}

// Resolve writes the final outcome and counts for a batch.
func (r *BatchRepository) Resolve(ctx context.Context, batch *domain.PayoutBatch) error {
	query := `
		UPDATE payout_batches
		SET outcome = $2, paid_count = $3, failed_count = $4,
		    pending_count = $5, resolved_at = $6
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		batch.ID,
		batch.Outcome,
		batch.PaidCount,
		batch.FailedCount,
		batch.PendingCount,
		batch.ResolvedAt,
	)
	return err
}

// GetByID retrieves a batch by ID.
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.PayoutBatch, error) {
	query := `
		SELECT id, submitted_at, outcome, item_count,
		       paid_count, failed_count, pending_count, resolved_at
		FROM payout_batches
		WHERE id = $1
	`

	var batch domain.PayoutBatch
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&batch.ID,
		&batch.SubmittedAt,
		&batch.Outcome,
		&batch.ItemCount,
		&batch.PaidCount,
		&batch.FailedCount,
		&batch.PendingCount,
		&batch.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}

	return &batch, nil
}
