package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-manager/backend/internal/metrics"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Recipes  *RecipeHandler
	Generate *GenerateHandler
	Health   *HealthHandler
	Metrics  *metrics.Metrics
}

// RegisterRoutes mounts the recipe API under /v1, the legacy delete route
// under /api, and the operational endpoints at the root.
func RegisterRoutes(router *gin.Engine, h Handlers) {
	v1 := router.Group("/v1")
	legacy := router.Group("/api")

	h.Recipes.RegisterRoutes(v1, legacy)
	h.Generate.RegisterRoutes(v1)

	if h.Health != nil {
		router.GET("/health", h.Health.Health)
	}
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
}
