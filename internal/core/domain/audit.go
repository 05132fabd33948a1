package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionTipPaid            AuditAction = "TIP_PAID"
	AuditActionWithdrawalRequest  AuditAction = "WITHDRAWAL_REQUEST"
	AuditActionPayoutStatusUpdate AuditAction = "PAYOUT_STATUS_UPDATE"
	AuditActionRegister           AuditAction = "REGISTER"
	AuditActionLogin              AuditAction = "LOGIN"
)

// AuditLog records a single money-moving transition. Entries are
// append-only: never mutated or deleted.
type AuditLog struct {
	ID        uuid.UUID   `json:"id"`
	Action    AuditAction `json:"action"`
	Entity    string      `json:"entity"` // "tip", "payout", ...
	EntityID  string      `json:"entity_id"`
	ActorID   *uuid.UUID  `json:"actor_id,omitempty"` // nil for customer-initiated events
	Details   string      `json:"details,omitempty"`  // JSON string
	IPAddress string      `json:"ip_address,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
