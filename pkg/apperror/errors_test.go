package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("TIP_001", "bad amount", http.StatusBadRequest)
	assert.Equal(t, "[TIP_001] bad amount", e.Error())

	wrapped := Wrap("SYS_001", "internal", http.StatusInternalServerError, errors.New("db down"))
	assert.Contains(t, wrapped.Error(), "db down")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	e := InternalError(fmt.Errorf("begin tx: %w", inner))

	require.ErrorIs(t, e, inner)
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"tip bounds", ErrTipAmountOutOfBounds(1000, 5000000), "TIP_001", http.StatusBadRequest},
		{"invalid rating", ErrInvalidRating(), "TIP_002", http.StatusBadRequest},
		{"cafe not found", ErrCafeNotFound(), "TIP_003", http.StatusNotFound},
		{"gateway initiation", ErrGatewayInitiation(errors.New("timeout")), "TIP_004", http.StatusBadGateway},
		{"below minimum", ErrBelowMinimumWithdrawal(10000), "WDR_001", http.StatusBadRequest},
		{"insufficient balance", ErrInsufficientBalance(), "WDR_002", http.StatusBadRequest},
		{"invalid bank info", ErrInvalidBankInfo(), "WDR_003", http.StatusBadRequest},
		{"too many pending", ErrTooManyPendingPayouts(3), "WDR_004", http.StatusBadRequest},
		{"payout not found", ErrPayoutNotFound(), "WDR_005", http.StatusNotFound},
		{"invalid transition", ErrInvalidPayoutTransition("COMPLETED", "REJECTED"), "WDR_006", http.StatusBadRequest},
		{"invalid credentials", ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{"forbidden", ErrForbidden(), "AUTH_004", http.StatusForbidden},
		{"rate limited", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
