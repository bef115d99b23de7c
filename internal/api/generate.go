package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/middleware"
	"github.com/pageza/recipe-manager/backend/internal/service"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// GenerateHandler exposes the recipe generation gateway.
type GenerateHandler struct {
	generator service.IGenerationService
	limiter   *middleware.RateLimiter
}

// NewGenerateHandler wires the gateway. limiter may be nil.
func NewGenerateHandler(generator service.IGenerationService, limiter *middleware.RateLimiter) *GenerateHandler {
	return &GenerateHandler{generator: generator, limiter: limiter}
}

func (h *GenerateHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{}
	if h.limiter != nil {
		handlers = append(handlers, h.limiter.Middleware())
	}
	handlers = append(handlers, h.GenerateMeal)
	v1.POST("/recipes/generate-meal", handlers...)
}

// GenerateMeal turns {"ingredients": [...]} into a generated recipe.
func (h *GenerateHandler) GenerateMeal(c *gin.Context) {
	var req types.GenerateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Invalid request body", map[string]string{
			"ingredients": "Ingredients must be a list of strings",
		}).WithCause(err))
		return
	}

	recipe, err := h.generator.Generate(c.Request.Context(), req.Ingredients)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}
