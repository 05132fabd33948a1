package postgres

import (
	"context"
	"errors"
	"fmt"

	"cafetip/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const payoutColumns = `id, cafe_id, amount, fee, net_amount, bank_info, status, created_at, updated_at`

// PayoutRepo implements ports.PayoutRepository.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

// Create inserts a payout inside the wallet-debit transaction.
func (r *PayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payout) error {
	query := `INSERT INTO payouts (` + payoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.CafeID, p.Amount, p.Fee, p.NetAmount, p.BankInfo,
		p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// GetByID fetches a payout by its UUID.
func (r *PayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`

	p := &domain.Payout{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CafeID, &p.Amount, &p.Fee, &p.NetAmount, &p.BankInfo,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payout by id: %w", err)
	}
	return p, nil
}

// CountPending counts a cafe's PENDING payout requests. Payouts an
// admin has moved to PROCESSING no longer count toward the cap.
func (r *PayoutRepo) CountPending(ctx context.Context, cafeID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM payouts
		WHERE cafe_id = $1 AND status = 'PENDING'`

	var count int
	if err := r.pool.QueryRow(ctx, query, cafeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending payouts: %w", err)
	}
	return count, nil
}

// UpdateStatus sets the payout status inside the caller's transaction.
func (r *PayoutRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PayoutStatus) error {
	query := `UPDATE payouts SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('COMPLETED', 'REJECTED')`

	tag, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update payout status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update payout status: payout %s already terminal", id)
	}
	return nil
}

// ListByCafe returns a cafe's payouts, newest first.
func (r *PayoutRepo) ListByCafe(ctx context.Context, cafeID uuid.UUID, limit int) ([]domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts
		WHERE cafe_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cafeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list payouts by cafe: %w", err)
	}
	defer rows.Close()

	return scanPayouts(rows)
}

// List returns payouts across all cafes, optionally filtered by status,
// oldest first so admins work the queue in arrival order.
func (r *PayoutRepo) List(ctx context.Context, status *domain.PayoutStatus, limit int) ([]domain.Payout, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		query := `SELECT ` + payoutColumns + ` FROM payouts
			WHERE status = $1 ORDER BY created_at ASC LIMIT $2`
		rows, err = r.pool.Query(ctx, query, *status, limit)
	} else {
		query := `SELECT ` + payoutColumns + ` FROM payouts
			ORDER BY created_at ASC LIMIT $1`
		rows, err = r.pool.Query(ctx, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	return scanPayouts(rows)
}

func scanPayouts(rows pgx.Rows) ([]domain.Payout, error) {
	var payouts []domain.Payout
	for rows.Next() {
		var p domain.Payout
		if err := rows.Scan(
			&p.ID, &p.CafeID, &p.Amount, &p.Fee, &p.NetAmount, &p.BankInfo,
			&p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payouts: %w", err)
	}
	return payouts, nil
}
