package handlers

import (
	"io"
	"net/http"
	"os"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/services"
	"github.com/Mtumish1/Nairobi-Gift-Shop/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type WebhookHandler struct {
	paymentService services.PaymentService
	webhookSecret  string
}

func NewWebhookHandler(paymentService services.PaymentService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		webhookSecret:  webhookSecret,
	}
}

// HandlePaymentWebhook receives gateway events. The signature is verified
// against the raw body before anything is decoded. Forged payloads are
// logged and discarded but still acknowledged with 200 so the gateway does
// not hammer us with retries of garbage. Verified events are acknowledged
// once handled or durably queued.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	signature := c.GetHeader(payment.SignatureHeader)
	if err := payment.VerifySignature(h.webhookSecret, body, signature); err != nil {
		logger.Warn().Str("remote_addr", c.ClientIP()).Msg("discarding webhook with invalid signature")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.paymentService.ProcessEvent(c.Request.Context(), body); err != nil {
		// Only an undecodable payload reaches here; internal failures were
		// queued for retry inside the service.
		logger.Warn().Err(err).Msg("rejecting malformed webhook payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
