package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xtopay/checkout-backend/common/errors"
	"github.com/xtopay/checkout-backend/middleware"
	"github.com/xtopay/checkout-backend/models"
	"github.com/xtopay/checkout-backend/services"
)

// BusinessController handles HTTP requests for merchant branding.
type BusinessController struct {
	businessService services.BusinessService
}

// NewBusinessController creates a new BusinessController.
func NewBusinessController(businessService services.BusinessService) *BusinessController {
	return &BusinessController{businessService: businessService}
}

// GetBusinessInfo handles POST /business/info. BasicAuth must run first.
func (bc *BusinessController) GetBusinessInfo(ctx *gin.Context) {
	creds, ok := middleware.CredentialsFrom(ctx)
	if !ok {
		apperrors.Respond(ctx, apperrors.ErrAuthMissing)
		return
	}

	var req models.BusinessInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apperrors.RespondValidation(ctx, err)
		return
	}

	info, svcErr := bc.businessService.GetBusinessInfo(ctx.Request.Context(), req.BusinessID, creds)
	if svcErr != nil {
		apperrors.Respond(ctx, svcErr.AppError())
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "success", "data": info})
}
