package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletLedger implements ports.WalletLedger. All balance mutations run on
// the caller's transaction and in single statements, so concurrent money
// movements serialize on the row without an explicit lock.
type WalletLedger struct{}

// NewWalletLedger creates a new WalletLedger.
func NewWalletLedger() *WalletLedger {
	return &WalletLedger{}
}

// Credit adds a settled tip to the wallet and bumps the lifetime counter.
func (l *WalletLedger) Credit(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) error {
	query := `UPDATE cafes
		SET wallet_balance = wallet_balance + $2,
		    total_tips = total_tips + $2,
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, cafeID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit wallet: cafe %s not found", cafeID)
	}
	return nil
}

// Debit subtracts amount only when the balance covers it. The balance
// check is part of the WHERE clause: under concurrent debits the second
// statement sees the first one's result and simply matches no row.
func (l *WalletLedger) Debit(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) (bool, error) {
	query := `UPDATE cafes
		SET wallet_balance = wallet_balance - $2,
		    updated_at = NOW()
		WHERE id = $1 AND wallet_balance >= $2`

	tag, err := tx.Exec(ctx, query, cafeID, amount)
	if err != nil {
		return false, fmt.Errorf("debit wallet: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Refund returns a rejected payout's hold to the wallet. Unlike Credit it
// leaves total_tips untouched.
func (l *WalletLedger) Refund(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) error {
	query := `UPDATE cafes
		SET wallet_balance = wallet_balance + $2,
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, cafeID, amount)
	if err != nil {
		return fmt.Errorf("refund wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund wallet: cafe %s not found", cafeID)
	}
	return nil
}
