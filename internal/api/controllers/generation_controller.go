package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"copyflow/internal/models/request_models"
	"copyflow/internal/services"
	"copyflow/pkg/utils"
)

type GenerationController struct {
	generationService services.GenerationServiceInterface
}

func NewGenerationController(generationService services.GenerationServiceInterface) *GenerationController {
	return &GenerationController{
		generationService: generationService,
	}
}

func (g *GenerationController) Generate(c *gin.Context) {
	var request request_models.GenerateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid session")
		return
	}

	generation, err := g.generationService.Generate(c.Request.Context(), userID, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, generation, "Generated successfully")
}

func (g *GenerationController) List(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid session")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	generations, err := g.generationService.List(c.Request.Context(), userID, limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, generations, "")
}
