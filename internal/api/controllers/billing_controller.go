package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"copyflow/internal/models/request_models"
	"copyflow/internal/services"
	"copyflow/pkg/utils"
)

type BillingController struct {
	billingService services.BillingServiceInterface
}

func NewBillingController(billingService services.BillingServiceInterface) *BillingController {
	return &BillingController{
		billingService: billingService,
	}
}

func (b *BillingController) ListPlans(c *gin.Context) {
	utils.RespondSuccess(c, b.billingService.ListPlans(), "")
}

// CreateCheckout godoc
// @Summary Create a checkout for a subscription plan
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreateCheckoutRequest true "Create Checkout Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/create-checkout [post]
func (b *BillingController) CreateCheckout(c *gin.Context) {
	var request request_models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid session")
		return
	}

	checkout, err := b.billingService.CreateCheckoutForPlan(c.Request.Context(), userID, request.PlanType)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, checkout, "Checkout created successfully")
}
