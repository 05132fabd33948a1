package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Tip Business Logic (TIP) ----

func ErrTipAmountOutOfBounds(min, max int64) *AppError {
	return New("TIP_001", fmt.Sprintf("Tip amount must be between %d and %d Toman", min, max), http.StatusBadRequest)
}

func ErrInvalidRating() *AppError {
	return New("TIP_002", "Rating must be an integer between 1 and 5", http.StatusBadRequest)
}

func ErrCafeNotFound() *AppError {
	return New("TIP_003", "Cafe not found or inactive", http.StatusNotFound)
}

func ErrGatewayInitiation(err error) *AppError {
	return Wrap("TIP_004", "Payment gateway unavailable, please try again", http.StatusBadGateway, err)
}

// ---- Withdrawal Business Logic (WDR) ----

func ErrBelowMinimumWithdrawal(min int64) *AppError {
	return New("WDR_001", fmt.Sprintf("Minimum withdrawal amount is %d Toman", min), http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("WDR_002", "Insufficient wallet balance", http.StatusBadRequest)
}

func ErrInvalidBankInfo() *AppError {
	return New("WDR_003", "Valid bank information is required", http.StatusBadRequest)
}

func ErrTooManyPendingPayouts(maxPending int) *AppError {
	return New("WDR_004", fmt.Sprintf("You already have %d pending withdrawal requests", maxPending), http.StatusBadRequest)
}

func ErrPayoutNotFound() *AppError {
	return New("WDR_005", "Payout request not found", http.StatusNotFound)
}

func ErrInvalidPayoutTransition(from, to string) *AppError {
	return New("WDR_006", fmt.Sprintf("Cannot transition payout from %s to %s", from, to), http.StatusBadRequest)
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid email or password", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email is already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_004", "You do not have permission to perform this action", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Too many requests, please slow down", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
