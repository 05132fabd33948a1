package handler

import (
	"time"

	"cafetip/internal/adapter/http/dto"
	"cafetip/internal/adapter/http/middleware"
	"cafetip/internal/core/domain"
	"cafetip/internal/core/ports"
	"cafetip/pkg/apperror"
	"cafetip/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WithdrawalHandler handles the cafe owner's withdrawal endpoints.
type WithdrawalHandler struct {
	withdrawalSvc ports.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalSvc ports.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc}
}

// Overview handles GET /api/v1/withdrawals.
func (h *WithdrawalHandler) Overview(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	overview, err := h.withdrawalSvc.Overview(c.Request.Context(), ownerID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	payouts := make([]dto.PayoutResponse, 0, len(overview.Payouts))
	for i := range overview.Payouts {
		payouts = append(payouts, toPayoutResponse(&overview.Payouts[i]))
	}

	response.OK(c, dto.WithdrawalOverviewResponse{
		WalletBalance: overview.WalletBalance,
		Payouts:       payouts,
	})
}

// Request handles POST /api/v1/withdrawals.
func (h *WithdrawalHandler) Request(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	payout, err := h.withdrawalSvc.Request(c.Request.Context(), ports.WithdrawalRequest{
		OwnerID:  ownerID.(uuid.UUID),
		Amount:   req.Amount,
		BankInfo: req.BankInfo,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPayoutResponse(payout))
}

func toPayoutResponse(p *domain.Payout) dto.PayoutResponse {
	return dto.PayoutResponse{
		ID:        p.ID.String(),
		CafeID:    p.CafeID.String(),
		Amount:    p.Amount,
		Fee:       p.Fee,
		NetAmount: p.NetAmount,
		BankInfo:  p.BankInfo,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}
