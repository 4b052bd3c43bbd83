package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// PayoutRepository implements usecase.PayoutRepository. Every state
// change is a conditional update keyed on the current state, so the
// database is the arbiter when claimers race.
type PayoutRepository struct {
	pool *pgxpool.Pool
}

// NewPayoutRepository creates a new PayoutRepository.
func NewPayoutRepository(pool *pgxpool.Pool) *PayoutRepository {
	return &PayoutRepository{pool: pool}
}

const payoutColumns = `
	id, commission_record_id, agent_id, amount_cents, currency, state,
	batch_id, transfer_reference, attempt_count, last_transition_at, created_at
`

// Create inserts a new line item.
func (r *PayoutRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.PayoutLineItem) error {
	query := `
		INSERT INTO payout_line_items (` + payoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := target(r.pool, tx).Exec(ctx, query,
		item.ID,
		item.CommissionRecordID,
		item.AgentID,
		item.Amount.Cents,
		item.Amount.Currency,
		item.State,
		item.BatchID,
		item.TransferReference,
		item.AttemptCount,
		item.LastTransitionAt,
		item.CreatedAt,
	)
	return err
}

// GetByID retrieves a line item by ID.
func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*domain.PayoutLineItem, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM payout_line_items
		WHERE id = $1
	`

	item, err := scanLineItem(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLineItemNotFound
	}
	return item, err
}

// ListByState lists line items in a state, oldest transition first.
func (r *PayoutRepository) ListByState(ctx context.Context, state domain.LineItemState, limit int) ([]*domain.PayoutLineItem, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM payout_line_items
		WHERE state = $1
		ORDER BY last_transition_at ASC, id ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, state, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLineItems(rows)
}

// ClaimReady atomically moves every Ready item into batchID. The
// conditional update means items claimed by a concurrent run are simply
// absent from the returned set.
func (r *PayoutRepository) ClaimReady(ctx context.Context, tx usecase.Transaction, batchID string, now time.Time) ([]*domain.PayoutLineItem, error) {
	query := `
		UPDATE payout_line_items
		SET state = $1, batch_id = $2, last_transition_at = $3
		WHERE state = $4
		RETURNING ` + payoutColumns

	rows, err := target(r.pool, tx).Query(ctx, query,
		domain.LineItemSubmitted, batchID, now, domain.LineItemReady)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLineItems(rows)
}

// TransitionState applies a single compare-and-swap transition. An item
// no longer in from yields ErrInvalidTransition; the caller decides
// whether that is a lost race or a real bug.
func (r *PayoutRepository) TransitionState(ctx context.Context, tx usecase.Transaction, id string, from, to domain.LineItemState, ref *string, now time.Time) error {
	query := `
		UPDATE payout_line_items
		SET state = $1, transfer_reference = COALESCE($2, transfer_reference), last_transition_at = $3
		WHERE id = $4 AND state = $5
	`

	tag, err := target(r.pool, tx).Exec(ctx, query, to, ref, now, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var current domain.LineItemState
		lookupErr := target(r.pool, tx).QueryRow(ctx,
			`SELECT state FROM payout_line_items WHERE id = $1`, id).Scan(&current)
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			return domain.ErrLineItemNotFound
		}
		if lookupErr != nil {
			return lookupErr
		}
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, to)
	}

	return nil
}

// IncrementAttempts bumps the attempt counter on a line item.
func (r *PayoutRepository) IncrementAttempts(ctx context.Context, tx usecase.Transaction, id string) error {
	query := `
		UPDATE payout_line_items
		SET attempt_count = attempt_count + 1
		WHERE id = $1
	`

	_, err := target(r.pool, tx).Exec(ctx, query, id)
	return err
}

func collectLineItems(rows pgx.Rows) ([]*domain.PayoutLineItem, error) {
	var items []*domain.PayoutLineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanLineItem(row pgx.Row) (*domain.PayoutLineItem, error) {
	var (
		item     domain.PayoutLineItem
		amount   int64
		currency string
	)

	err := row.Scan(
		&item.ID,
		&item.CommissionRecordID,
		&item.AgentID,
		&amount,
		&currency,
		&item.State,
		&item.BatchID,
		&item.TransferReference,
		&item.AttemptCount,
		&item.LastTransitionAt,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Amount = domain.Cents(amount, currency)
	return &item, nil
}
