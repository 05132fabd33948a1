package dto

// RegisterRequest is the request body for cafe owner registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	CafeName string `json:"cafe_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	CafeID   string `json:"cafe_id"`
	CafeSlug string `json:"cafe_slug"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // Unix timestamp
	Role      string `json:"role"`
}

// CreateTipRequest is the request body for creating a tip.
// Amounts are whole Toman; bounds are enforced by the service.
type CreateTipRequest struct {
	CafeID   string  `json:"cafe_id" binding:"required,uuid"`
	Amount   int64   `json:"amount" binding:"required,gt=0"`
	Rating   *int    `json:"rating,omitempty"`
	Comment  *string `json:"comment,omitempty" binding:"omitempty,max=500"`
	Nickname *string `json:"nickname,omitempty" binding:"omitempty,max=50"`
}

// CreateTipResponse is the response body for a created tip.
type CreateTipResponse struct {
	TipID      string `json:"tip_id"`
	PaymentURL string `json:"payment_url"`
}

// CafeResponse is the public cafe view shown on the tip page.
type CafeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// WithdrawalRequest is the request body for a payout request.
type WithdrawalRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	BankInfo string `json:"bank_info" binding:"required,min=10,max=200"`
}

// PayoutResponse is the response body for a payout.
type PayoutResponse struct {
	ID        string `json:"id"`
	CafeID    string `json:"cafe_id"`
	Amount    int64  `json:"amount"`
	Fee       int64  `json:"fee"`
	NetAmount int64  `json:"net_amount"`
	BankInfo  string `json:"bank_info"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// WithdrawalOverviewResponse is the owner's wallet view.
type WithdrawalOverviewResponse struct {
	WalletBalance int64            `json:"wallet_balance"`
	Payouts       []PayoutResponse `json:"payouts"`
}

// UpdatePayoutStatusRequest is the admin request body for a payout
// status transition.
type UpdatePayoutStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PROCESSING COMPLETED REJECTED"`
}
