package handler

import (
	"fmt"
	"net/http"

	"cafetip/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentHandler handles the gateway settlement callback.
type PaymentHandler struct {
	tipSvc  ports.TipService
	baseURL string
	log     zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler. baseURL is the public
// application URL the customer is redirected back to.
func NewPaymentHandler(tipSvc ports.TipService, baseURL string, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{tipSvc: tipSvc, baseURL: baseURL, log: log}
}

// VerifyCallback handles GET /api/v1/payments/verify. The gateway
// redirects the customer's browser here after the payment page, so the
// response is always a redirect to the thank-you page, never JSON.
func (h *PaymentHandler) VerifyCallback(c *gin.Context) {
	authority := c.Query("Authority")
	gatewayStatus := c.Query("Status")

	tipID, err := uuid.Parse(c.Query("tipId"))
	if err != nil {
		h.log.Warn().Str("tip_id", c.Query("tipId")).Msg("settlement callback with malformed tip id")
		h.redirect(c, &ports.SettleResult{Success: false})
		return
	}

	result := h.tipSvc.Settle(c.Request.Context(), ports.SettleRequest{
		Authority:     authority,
		GatewayStatus: gatewayStatus,
		TipID:         tipID,
	})

	h.redirect(c, result)
}

func (h *PaymentHandler) redirect(c *gin.Context, result *ports.SettleResult) {
	target := fmt.Sprintf("%s/thank-you?status=failed", h.baseURL)
	if result.Success {
		target = fmt.Sprintf("%s/thank-you?status=success&amount=%d", h.baseURL, result.TotalPaid)
	}
	c.Redirect(http.StatusFound, target)
}
