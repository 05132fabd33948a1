package handler

import (
	"cafetip/internal/adapter/http/dto"
	"cafetip/internal/adapter/http/middleware"
	"cafetip/internal/core/domain"
	"cafetip/internal/core/ports"
	"cafetip/pkg/apperror"
	"cafetip/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles the admin payout queue endpoints.
type AdminHandler struct {
	withdrawalSvc ports.WithdrawalService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(withdrawalSvc ports.WithdrawalService) *AdminHandler {
	return &AdminHandler{withdrawalSvc: withdrawalSvc}
}

// ListPayouts handles GET /api/v1/admin/payouts. An optional status
// query parameter filters the queue.
func (h *AdminHandler) ListPayouts(c *gin.Context) {
	var statusFilter *domain.PayoutStatus
	if raw := c.Query("status"); raw != "" {
		status := domain.PayoutStatus(raw)
		switch status {
		case domain.PayoutStatusPending, domain.PayoutStatusProcessing,
			domain.PayoutStatusCompleted, domain.PayoutStatusRejected:
			statusFilter = &status
		default:
			response.Error(c, apperror.Validation("unknown payout status: "+raw))
			return
		}
	}

	payouts, err := h.withdrawalSvc.ListAll(c.Request.Context(), statusFilter)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := make([]dto.PayoutResponse, 0, len(payouts))
	for i := range payouts {
		result = append(result, toPayoutResponse(&payouts[i]))
	}
	response.OK(c, result)
}

// UpdatePayoutStatus handles PUT /api/v1/admin/payouts/:id.
func (h *AdminHandler) UpdatePayoutStatus(c *gin.Context) {
	actorID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("payout id must be a valid UUID"))
		return
	}

	var req dto.UpdatePayoutStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payout, err := h.withdrawalSvc.UpdateStatus(c.Request.Context(), ports.PayoutStatusUpdate{
		PayoutID: payoutID,
		Status:   domain.PayoutStatus(req.Status),
		ActorID:  actorID.(uuid.UUID),
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPayoutResponse(payout))
}
