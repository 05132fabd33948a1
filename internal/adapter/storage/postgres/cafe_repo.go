package postgres

import (
	"context"
	"errors"
	"fmt"

	"cafetip/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const cafeColumns = `id, owner_id, name, slug, wallet_balance, total_tips, telegram_chat_id, is_active, created_at, updated_at`

// CafeRepo implements ports.CafeRepository.
type CafeRepo struct {
	pool Pool
}

// NewCafeRepo creates a new CafeRepo.
func NewCafeRepo(pool Pool) *CafeRepo {
	return &CafeRepo{pool: pool}
}

// Create inserts a new cafe into the database.
func (r *CafeRepo) Create(ctx context.Context, c *domain.Cafe) error {
	query := `INSERT INTO cafes (` + cafeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.OwnerID, c.Name, c.Slug, c.WalletBalance, c.TotalTips,
		c.TelegramChatID, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cafe: %w", err)
	}
	return nil
}

// GetByID fetches a cafe by its UUID.
func (r *CafeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cafe, error) {
	return r.getOne(ctx, `SELECT `+cafeColumns+` FROM cafes WHERE id = $1`, id)
}

// GetByOwnerID fetches the cafe owned by the given user.
func (r *CafeRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.Cafe, error) {
	return r.getOne(ctx, `SELECT `+cafeColumns+` FROM cafes WHERE owner_id = $1`, ownerID)
}

// GetBySlug fetches a cafe by its public slug.
func (r *CafeRepo) GetBySlug(ctx context.Context, slug string) (*domain.Cafe, error) {
	return r.getOne(ctx, `SELECT `+cafeColumns+` FROM cafes WHERE slug = $1`, slug)
}

func (r *CafeRepo) getOne(ctx context.Context, query string, arg any) (*domain.Cafe, error) {
	c := &domain.Cafe{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Slug, &c.WalletBalance, &c.TotalTips,
		&c.TelegramChatID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cafe: %w", err)
	}
	return c, nil
}
