package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"staging-pro-backend/internal/checkout"
	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
)

// maxWebhookBody bounds a provider event payload.
const maxWebhookBody = 64 << 10

type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (checkout.WebhookEvent, error)
}

type CheckoutCompleter interface {
	CompleteCheckout(ctx context.Context, session checkout.Session) error
}

type WebhookHandler struct {
	parser    WebhookParser
	completer CheckoutCompleter
}

func NewWebhookHandler(parser WebhookParser, completer CheckoutCompleter) *WebhookHandler {
	return &WebhookHandler{parser: parser, completer: completer}
}

// HandleStripeWebhook godoc
// @Summary     Stripe webhook endpoint
// @Description Receives checkout events from Stripe. The payload is verified against the Stripe-Signature header; a completed session marks its order paid.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Stripe-Signature header string true "Stripe signature"
// @Success     200 {object} map[string]string "status"
// @Failure     400 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	if h.parser == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "webhooks not configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	event, err := h.parser.ParseWebhook(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logger.Warn(ctx, "rejected webhook", "error", err)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid webhook",
			Message: err.Error(),
		})
		return
	}

	if event.Type != checkout.EventSessionCompleted {
		logger.Debug(ctx, "ignoring webhook event", "type", event.Type)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	err = h.completer.CompleteCheckout(ctx, event.Session)
	switch {
	case err == nil:
		logger.Info(ctx, "checkout completed", "order_id", event.Session.OrderID, "session_id", event.Session.ID)
	case errors.Is(err, lifecycle.ErrNotFound), errors.Is(err, lifecycle.ErrInvalidTransition):
		// Redeliveries and deleted orders are acknowledged so Stripe stops retrying.
		logger.Warn(ctx, "checkout event not applied", "order_id", event.Session.OrderID, "error", err)
	default:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
