package postgres

import (
	"context"
	"fmt"

	"cafetip/internal/core/domain"
)

// AuditRepo implements ports.AuditRepository. The table is append-only;
// there are no update or delete paths.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create inserts an audit entry.
func (r *AuditRepo) Create(ctx context.Context, e *domain.AuditLog) error {
	query := `INSERT INTO audit_logs (id, action, entity, entity_id, actor_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Action, e.Entity, e.EntityID, e.ActorID, e.Details, e.IPAddress, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
