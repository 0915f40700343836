package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"copyflow/internal/services"
	"copyflow/pkg/utils"
)

// WebhookController is the server-to-server surface for the payment gateway.
// It speaks the gateway's retry contract, not the app's APIResponse envelope:
// every 2xx stops redelivery, every 5xx invites it.
type WebhookController struct {
	webhookService services.WebhookServiceInterface
}

func NewWebhookController(webhookService services.WebhookServiceInterface) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
	}
}

func (w *WebhookController) HandleNotification(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	outcome, err := w.webhookService.ProcessNotification(
		c.Request.Context(),
		c.GetHeader("X-Signature"),
		c.GetHeader("X-Request-Id"),
		body,
	)

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true, "status": outcome.Status})

	case errors.Is(err, utils.ErrSignatureInvalid):
		// No state recorded; a correctly signed redelivery is not blocked.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})

	case errors.Is(err, utils.ErrMalformedNotification):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed notification"})

	default:
		// The event record is already marked failed; a 5xx asks the gateway
		// to redeliver, which reopens the record.
		log.Printf("webhook: processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
	}
}
