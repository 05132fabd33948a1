package domain

import (
	"time"

	"github.com/google/uuid"
)

// TipStatus represents the lifecycle state of a tip.
type TipStatus string

const (
	TipStatusPending TipStatus = "PENDING"
	TipStatusPaid    TipStatus = "PAID"
	TipStatusFailed  TipStatus = "FAILED"
)

// Tip represents one attempted or completed customer payment.
//
// Amount is the cafe's net (what the customer intends to tip); Commission
// is the platform cut paid on top by the customer; TotalPaid is what the
// gateway actually charges. Once PAID these fields are immutable and the
// cafe wallet has been credited by exactly Amount, exactly once.
type Tip struct {
	ID         uuid.UUID `json:"id"`
	CafeID     uuid.UUID `json:"cafe_id"`
	Amount     int64     `json:"amount"`
	Commission int64     `json:"commission"`
	TotalPaid  int64     `json:"total_paid"`
	Status     TipStatus `json:"status"`
	Rating     *int      `json:"rating,omitempty"` // 1..5
	Comment    *string   `json:"comment,omitempty"`
	Nickname   *string   `json:"nickname,omitempty"`
	PaymentRef *string   `json:"payment_ref,omitempty"` // Gateway ref id once PAID
	ClientIP   string    `json:"-"`
	UserAgent  string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsTerminal returns true once the tip reached a final state.
// There is no transition out of a terminal state.
func (t *Tip) IsTerminal() bool {
	return t.Status == TipStatusPaid || t.Status == TipStatusFailed
}
