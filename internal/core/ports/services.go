package ports

import (
	"context"
	"time"

	"cafetip/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// PaymentGateway talks to the external payment provider. Both calls are
// stateless pass-throughs; retry policy belongs to the caller.
type PaymentGateway interface {
	// Initiate requests a new payment session. amount is in whole Toman;
	// the implementation converts to the gateway's minor unit.
	Initiate(ctx context.Context, amount int64, description, callbackURL string) (*InitiateResult, error)
	// Verify confirms a completed payment. It must treat the gateway's
	// "already verified" response as success, so repeated settlement
	// callbacks stay idempotent.
	Verify(ctx context.Context, authority string, amount int64) (*VerifyResult, error)
}

// InitiateResult holds the gateway session created by Initiate.
type InitiateResult struct {
	Authority  string
	PaymentURL string
}

// VerifyResult holds the gateway reference for a verified payment.
type VerifyResult struct {
	RefID int64
}

// TipNotification carries the details sent to a cafe's notification channel.
type TipNotification struct {
	CafeName string
	Amount   int64
	Rating   *int
	Comment  *string
	Nickname *string
}

// Notifier delivers best-effort notifications to cafe owners. Failures
// must never propagate into the money path.
type Notifier interface {
	NotifyTip(ctx context.Context, chatID string, n TipNotification) error
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimitStore counts requests per key within a time window. Backed by
// Redis in production; an in-memory implementation exists for single-node
// deployments and tests.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.UserRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.UserRole
}

// --- Service Ports (Business Logic) ---

// TipService drives the tip lifecycle: PENDING at creation, then exactly
// one transition to PAID or FAILED via the settlement callback.
type TipService interface {
	Create(ctx context.Context, req CreateTipRequest) (*CreateTipResult, error)
	Settle(ctx context.Context, req SettleRequest) *SettleResult
}

// CreateTipRequest holds validated input for tip creation.
type CreateTipRequest struct {
	CafeID    uuid.UUID
	Amount    int64
	Rating    *int
	Comment   *string
	Nickname  *string
	ClientIP  string
	UserAgent string
}

// CreateTipResult is returned when payment initiation succeeded.
type CreateTipResult struct {
	TipID      uuid.UUID
	PaymentURL string
}

// SettleRequest carries the gateway callback parameters.
type SettleRequest struct {
	Authority     string
	GatewayStatus string // "OK" on success, anything else is a cancel/failure
	TipID         uuid.UUID
}

// SettleResult is the outcome shown to the redirected customer. The
// callback always redirects, so internal errors collapse into a failed
// outcome rather than an error return.
type SettleResult struct {
	Success   bool
	TotalPaid int64
}

// WithdrawalService manages payout requests and their admin transitions.
type WithdrawalService interface {
	Request(ctx context.Context, req WithdrawalRequest) (*domain.Payout, error)
	UpdateStatus(ctx context.Context, req PayoutStatusUpdate) (*domain.Payout, error)
	Overview(ctx context.Context, ownerID uuid.UUID) (*WithdrawalOverview, error)
	ListAll(ctx context.Context, status *domain.PayoutStatus) ([]domain.Payout, error)
}

// WithdrawalRequest holds validated input for a payout request.
type WithdrawalRequest struct {
	OwnerID  uuid.UUID
	Amount   int64
	BankInfo string
	ClientIP string
}

// PayoutStatusUpdate holds an admin payout transition.
type PayoutStatusUpdate struct {
	PayoutID uuid.UUID
	Status   domain.PayoutStatus
	ActorID  uuid.UUID
	ClientIP string
}

// WithdrawalOverview is the owner's wallet view: current balance plus
// payout history.
type WithdrawalOverview struct {
	WalletBalance int64
	Payouts       []domain.Payout
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// RegisterRequest holds input for cafe owner registration.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	CafeName string
}

// RegisterResult holds the created owner account and cafe.
type RegisterResult struct {
	UserID   uuid.UUID
	CafeID   uuid.UUID
	CafeSlug string
}

// LoginResult holds a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Role      domain.UserRole
}

// AuditService records money-moving transitions without ever blocking them.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
