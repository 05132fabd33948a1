package domain

import (
	"time"

	"github.com/google/uuid"
)

// PayoutStatus represents the lifecycle state of a withdrawal request.
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusCompleted  PayoutStatus = "COMPLETED"
	PayoutStatusRejected   PayoutStatus = "REJECTED"
)

// Payout is a withdrawal request against a cafe wallet.
//
// The wallet is debited by Amount at creation time; funds are held
// pending admin action. A transition to REJECTED credits Amount back;
// PROCESSING and COMPLETED are non-refunding, the hold converts to a
// bank transfer handled out-of-band.
type Payout struct {
	ID        uuid.UUID    `json:"id"`
	CafeID    uuid.UUID    `json:"cafe_id"`
	Amount    int64        `json:"amount"`
	Fee       int64        `json:"fee"`
	NetAmount int64        `json:"net_amount"` // Amount - Fee
	BankInfo  string       `json:"bank_info"`
	Status    PayoutStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CanTransitionTo reports whether an admin may move the payout to the
// given status: PENDING -> PROCESSING, PENDING|PROCESSING -> COMPLETED,
// PENDING|PROCESSING -> REJECTED. Terminal states admit no transitions.
func (p *Payout) CanTransitionTo(next PayoutStatus) bool {
	switch next {
	case PayoutStatusProcessing:
		return p.Status == PayoutStatusPending
	case PayoutStatusCompleted, PayoutStatusRejected:
		return p.Status == PayoutStatusPending || p.Status == PayoutStatusProcessing
	default:
		return false
	}
}

// IsTerminal returns true once the payout reached a final state.
func (p *Payout) IsTerminal() bool {
	return p.Status == PayoutStatusCompleted || p.Status == PayoutStatusRejected
}
