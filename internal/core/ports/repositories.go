package ports

import (
	"context"

	"cafetip/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CafeRepository defines persistence operations for cafes.
type CafeRepository interface {
	Create(ctx context.Context, cafe *domain.Cafe) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cafe, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.Cafe, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Cafe, error)
}

// WalletLedger is the single point through which all cafe balance
// mutations flow. Every method requires an open pgx.Tx so the balance
// change commits or aborts together with the rest of the money-moving
// operation.
type WalletLedger interface {
	// Credit adds a settled tip amount to the wallet and bumps the
	// lifetime tips counter. Used only by tip settlement.
	Credit(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) error
	// Debit subtracts amount if and only if the current balance covers
	// it; the check and the update are one atomic statement. Returns
	// false when the balance is insufficient. Used by withdrawal creation.
	Debit(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) (bool, error)
	// Refund adds a rejected payout's amount back to the wallet without
	// touching the lifetime tips counter.
	Refund(ctx context.Context, tx pgx.Tx, cafeID uuid.UUID, amount int64) error
}

// TipRepository defines persistence operations for tips.
type TipRepository interface {
	Create(ctx context.Context, tip *domain.Tip) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tip, error)
	// UpdateStatus is the non-transactional fail path used when gateway
	// initiation fails before any settlement state exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TipStatus) error
	// MarkFailed and MarkPaid run inside the settlement transaction.
	MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentRef string) error
}

// TransactionRepository defines persistence for gateway transactions.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	// GetByAuthorityAndTip matches a settlement callback to its
	// in-flight gateway attempt.
	GetByAuthorityAndTip(ctx context.Context, authority string, tipID uuid.UUID) (*domain.Transaction, error)
	MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	Complete(ctx context.Context, tx pgx.Tx, id uuid.UUID, reference string) error
}

// PayoutRepository defines persistence operations for payouts.
type PayoutRepository interface {
	// Create inserts the payout inside the same transaction that debits
	// the wallet.
	Create(ctx context.Context, tx pgx.Tx, payout *domain.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error)
	CountPending(ctx context.Context, cafeID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PayoutStatus) error
	ListByCafe(ctx context.Context, cafeID uuid.UUID, limit int) ([]domain.Payout, error)
	List(ctx context.Context, status *domain.PayoutStatus, limit int) ([]domain.Payout, error)
}

// AuditRepository defines persistence for the append-only audit log.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
