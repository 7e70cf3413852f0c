package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xtopay/checkout-backend/common/errors"
	"github.com/xtopay/checkout-backend/models"
	"github.com/xtopay/checkout-backend/services"
)

// CheckoutController handles HTTP requests for the checkout lifecycle.
type CheckoutController struct {
	checkoutService services.CheckoutService
}

// NewCheckoutController creates a new CheckoutController.
func NewCheckoutController(checkoutService services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

// Initiate handles POST /checkout/initiate.
func (cc *CheckoutController) Initiate(ctx *gin.Context) {
	var req models.InitiateCheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apperrors.RespondValidation(ctx, err)
		return
	}

	result, svcErr := cc.checkoutService.Initiate(ctx.Request.Context(), &req)
	if svcErr != nil {
		apperrors.Respond(ctx, svcErr.AppError())
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": models.CheckoutStatusPending, "data": result})
}

// GetStatus handles GET /checkout/status/:clientReference.
func (cc *CheckoutController) GetStatus(ctx *gin.Context) {
	status, svcErr := cc.checkoutService.GetStatus(ctx.Request.Context(), ctx.Param("clientReference"))
	if svcErr != nil {
		apperrors.Respond(ctx, svcErr.AppError())
		return
	}

	ctx.JSON(http.StatusOK, status)
}

// Cancel handles POST /checkout/cancel/:clientReference.
func (cc *CheckoutController) Cancel(ctx *gin.Context) {
	result, svcErr := cc.checkoutService.Cancel(ctx.Request.Context(), ctx.Param("clientReference"))
	if svcErr != nil {
		apperrors.Respond(ctx, svcErr.AppError())
		return
	}

	ctx.JSON(http.StatusOK, result)
}
