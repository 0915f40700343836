package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"copyflow/internal/models/request_models"
	"copyflow/internal/models/response_models"
	"copyflow/internal/services"
	"copyflow/pkg/utils"
)

type AccountController struct {
	accountService      services.AccountServiceInterface
	profileService      services.ProfileServiceInterface
	subscriptionService services.SubscriptionServiceInterface
}

func NewAccountController(
	accountService services.AccountServiceInterface,
	profileService services.ProfileServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
) *AccountController {
	return &AccountController{
		accountService:      accountService,
		profileService:      profileService,
		subscriptionService: subscriptionService,
	}
}

func (a *AccountController) SignUp(c *gin.Context) {
	var request request_models.SignUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := a.accountService.CreateAccount(c.Request.Context(), request); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Account created successfully")
}

func (a *AccountController) Login(c *gin.Context) {
	var request request_models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, err := a.accountService.Login(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"token": token}, "Logged in successfully")
}

// Me returns the caller's profile with the plan re-derived from the
// subscription ledger, so the response never shows a stale tier.
func (a *AccountController) Me(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid session")
		return
	}

	plan, err := a.profileService.Reconcile(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	profile, err := a.profileService.Get(c.Request.Context(), userID)
	if err != nil || profile == nil {
		utils.HandleServiceError(c, utils.ErrProfileNotFound)
		return
	}

	var planExpiresAt string
	if sub, err := a.subscriptionService.ActiveSubscription(c.Request.Context(), userID); err == nil && sub != nil && sub.ExpiresAt != nil {
		planExpiresAt = utils.FormatRFC3339(utils.FromUnixSeconds(*sub.ExpiresAt))
	}

	utils.RespondSuccess(c, response_models.ProfileResponse{
		ID:              profile.ID,
		Email:           profile.Email,
		Name:            profile.Name,
		Plan:            string(plan),
		PlanExpiresAt:   planExpiresAt,
		GenerationsUsed: profile.GenerationsUsed,
	}, "")
}

func (a *AccountController) ForgotPassword(c *gin.Context) {
	var request request_models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if _, err := a.accountService.RequestPasswordReset(c.Request.Context(), request.Email); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "If the email is registered, a reset link has been sent")
}

func (a *AccountController) ResetPassword(c *gin.Context) {
	var request request_models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := a.accountService.ResetPassword(c.Request.Context(), request); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Password updated successfully")
}
