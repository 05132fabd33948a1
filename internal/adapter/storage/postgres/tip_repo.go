package postgres

import (
	"context"
	"errors"
	"fmt"

	"cafetip/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tipColumns = `id, cafe_id, amount, commission, total_paid, status, rating, comment, nickname, payment_ref, client_ip, user_agent, created_at, updated_at`

// TipRepo implements ports.TipRepository.
type TipRepo struct {
	pool Pool
}

// NewTipRepo creates a new TipRepo.
func NewTipRepo(pool Pool) *TipRepo {
	return &TipRepo{pool: pool}
}

// Create inserts a new tip into the database.
func (r *TipRepo) Create(ctx context.Context, t *domain.Tip) error {
	query := `INSERT INTO tips (` + tipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.CafeID, t.Amount, t.Commission, t.TotalPaid, t.Status,
		t.Rating, t.Comment, t.Nickname, t.PaymentRef, t.ClientIP, t.UserAgent,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tip: %w", err)
	}
	return nil
}

// GetByID fetches a tip by its UUID.
func (r *TipRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tip, error) {
	query := `SELECT ` + tipColumns + ` FROM tips WHERE id = $1`

	t := &domain.Tip{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.CafeID, &t.Amount, &t.Commission, &t.TotalPaid, &t.Status,
		&t.Rating, &t.Comment, &t.Nickname, &t.PaymentRef, &t.ClientIP, &t.UserAgent,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tip by id: %w", err)
	}
	return t, nil
}

// UpdateStatus sets the tip status outside any settlement transaction.
// Guarded against overwriting a terminal state.
func (r *TipRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TipStatus) error {
	query := `UPDATE tips SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`

	_, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update tip status: %w", err)
	}
	return nil
}

// MarkFailed sets the tip FAILED inside the settlement transaction.
func (r *TipRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE tips SET status = 'FAILED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`

	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark tip failed: %w", err)
	}
	return nil
}

// MarkPaid sets the tip PAID with its gateway reference inside the
// settlement transaction.
func (r *TipRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentRef string) error {
	query := `UPDATE tips SET status = 'PAID', payment_ref = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, id, paymentRef)
	if err != nil {
		return fmt.Errorf("mark tip paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark tip paid: tip %s not pending", id)
	}
	return nil
}
