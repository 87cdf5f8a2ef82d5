package handlers

import (
	"io"
	"net/http"

	"wagyu_backend/internal/services"
	"wagyu_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Provider payloads are small; anything bigger is abuse.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	*BaseHandler
	billingService services.BillingService
}

func NewWebhookHandler(base *BaseHandler, billingService services.BillingService) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    base,
		billingService: billingService,
	}
}

func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// No auth middleware: the HMAC signature is the authentication.
	rg.POST("/webhooks/billing", h.HandleBillingWebhook)
}

func (h *WebhookHandler) HandleBillingWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read request body"))
		return
	}

	signature := c.GetHeader("Webhook-Signature")
	db := h.GetDB(c)

	if err := h.billingService.ProcessWebhook(db, payload, signature); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
