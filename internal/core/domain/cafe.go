package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cafe represents a registered cafe with its wallet.
//
// WalletBalance is the single mutable money field. It changes only through
// the wallet ledger: tip settlement credit, withdrawal debit, and
// rejection refund. It is never negative.
type Cafe struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	WalletBalance  int64     `json:"wallet_balance"` // Whole Toman
	TotalTips      int64     `json:"total_tips"`     // Lifetime settled tip volume
	TelegramChatID *string   `json:"-"`              // Notification channel, optional
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
