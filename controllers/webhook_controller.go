package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xtopay/checkout-backend/common/logger"
)

// WebhookController acknowledges gateway callbacks. Payloads are neither
// parsed nor verified and no state changes.
type WebhookController struct {
	logger *zap.Logger
}

// NewWebhookController creates a new WebhookController.
func NewWebhookController(logger *zap.Logger) *WebhookController {
	return &WebhookController{logger: logger}
}

// Receive handles POST /webhook.
func (wc *WebhookController) Receive(ctx *gin.Context) {
	logger.With(ctx, wc.logger).Info("Webhook received",
		zap.String("method", ctx.Request.Method),
		zap.Int64("content_length", ctx.Request.ContentLength),
		zap.String("content_type", ctx.ContentType()),
	)
	ctx.JSON(http.StatusOK, gin.H{"received": true})
}
