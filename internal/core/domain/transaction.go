package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of gateway interaction.
type TransactionType string

const (
	TransactionTypeTipPayment TransactionType = "TIP_PAYMENT"
	TransactionTypePayout     TransactionType = "PAYOUT"
)

// TransactionStatus represents the lifecycle state of a gateway transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction records one gateway interaction tied to a Tip or a Payout.
//
// It exists separately from the domain entities so gateway correlation
// data (the authority code used for callback matching) stays out of them,
// and so a tip maps to exactly one in-flight gateway attempt. Its terminal
// status is the idempotency anchor for settlement callbacks.
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	TipID     *uuid.UUID        `json:"tip_id,omitempty"`
	PayoutID  *uuid.UUID        `json:"payout_id,omitempty"`
	Type      TransactionType   `json:"type"`
	Amount    int64             `json:"amount"` // TotalPaid for tip payments
	Authority string            `json:"authority"`
	Reference *string           `json:"reference,omitempty"` // Gateway ref id once completed
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}
