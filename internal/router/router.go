package router

import (
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/api"
	"github.com/pageza/recipe-manager/backend/internal/middleware"
)

// SetupRouter builds the engine with the middleware chain and every route.
func SetupRouter(cfg *config.Config, handlers api.Handlers, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		requestid.New(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORS),
	)
	if handlers.Metrics != nil {
		router.Use(handlers.Metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler(log))

	// Locally stored images are served by the API itself.
	if cfg.Upload.Storage == "local" && strings.HasPrefix(cfg.Upload.PublicBaseURL, "/") {
		router.Static(cfg.Upload.PublicBaseURL, cfg.Upload.LocalDir)
	}

	api.RegisterRoutes(router, handlers)
	return router
}
