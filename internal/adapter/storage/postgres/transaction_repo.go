package postgres

import (
	"context"
	"errors"
	"fmt"

	"cafetip/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, tip_id, payout_id, type, amount, authority, reference, status, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction into the database.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.TipID, t.PayoutID, t.Type, t.Amount, t.Authority,
		t.Reference, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByAuthorityAndTip matches a callback to its gateway attempt. Both
// parameters must match so a valid authority cannot settle someone
// else's tip.
func (r *TransactionRepo) GetByAuthorityAndTip(ctx context.Context, authority string, tipID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions WHERE authority = $1 AND tip_id = $2`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, authority, tipID).Scan(
		&t.ID, &t.TipID, &t.PayoutID, &t.Type, &t.Amount, &t.Authority,
		&t.Reference, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by authority: %w", err)
	}
	return t, nil
}

// MarkFailed sets the transaction FAILED inside the settlement transaction.
func (r *TransactionRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE transactions SET status = 'FAILED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`

	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark transaction failed: %w", err)
	}
	return nil
}

// Complete sets the transaction COMPLETED with its gateway reference. The
// PENDING guard makes a replayed settlement a no-op at the SQL level too.
func (r *TransactionRepo) Complete(ctx context.Context, tx pgx.Tx, id uuid.UUID, reference string) error {
	query := `UPDATE transactions SET status = 'COMPLETED', reference = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, id, reference)
	if err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete transaction: transaction %s not pending", id)
	}
	return nil
}
