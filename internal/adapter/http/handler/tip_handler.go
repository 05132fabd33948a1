package handler

import (
	"cafetip/internal/adapter/http/dto"
	"cafetip/internal/core/ports"
	"cafetip/pkg/apperror"
	"cafetip/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TipHandler handles the public tipping endpoints.
type TipHandler struct {
	tipSvc   ports.TipService
	cafeRepo ports.CafeRepository
}

// NewTipHandler creates a new TipHandler.
func NewTipHandler(tipSvc ports.TipService, cafeRepo ports.CafeRepository) *TipHandler {
	return &TipHandler{tipSvc: tipSvc, cafeRepo: cafeRepo}
}

// Create handles POST /api/v1/tips.
func (h *TipHandler) Create(c *gin.Context) {
	var req dto.CreateTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	cafeID, err := uuid.Parse(req.CafeID)
	if err != nil {
		response.Error(c, apperror.Validation("cafe_id must be a valid UUID"))
		return
	}

	result, err := h.tipSvc.Create(c.Request.Context(), ports.CreateTipRequest{
		CafeID:    cafeID,
		Amount:    req.Amount,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Nickname:  req.Nickname,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateTipResponse{
		TipID:      result.TipID.String(),
		PaymentURL: result.PaymentURL,
	})
}

// GetCafe handles GET /api/v1/cafes/:slug. Public lookup backing the
// tip page; inactive cafes are indistinguishable from missing ones.
func (h *TipHandler) GetCafe(c *gin.Context) {
	cafe, err := h.cafeRepo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	if cafe == nil || !cafe.IsActive {
		response.Error(c, apperror.ErrCafeNotFound())
		return
	}

	response.OK(c, dto.CafeResponse{
		ID:   cafe.ID.String(),
		Name: cafe.Name,
		Slug: cafe.Slug,
	})
}
