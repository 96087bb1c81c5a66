package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/CaioZinDaLua/secure-contract-ai-review/middleware"
	"github.com/CaioZinDaLua/secure-contract-ai-review/service"
	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billingService *service.BillingService
}

func NewBillingHandler(billingSvc *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingSvc}
}

type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// CreateCheckout starts a hosted payment session and returns its URL
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados da requisição inválidos"})
		return
	}

	url, err := h.billingService.CreateCheckout(
		middleware.GetUserID(c),
		middleware.GetEmail(c),
		req.Plan,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Webhook receives signature-verified payment-provider events. A bad
// signature is rejected with a client error before any state change.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No signature"})
		return
	}

	if err := h.billingService.HandleWebhook(payload, sigHeader); err != nil {
		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			// Signature verification failed
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
