package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/metrics"
	"github.com/pageza/recipe-manager/backend/internal/middleware"
	"github.com/pageza/recipe-manager/backend/internal/model"
	"github.com/pageza/recipe-manager/backend/internal/service"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

type RecipeHandler struct {
	recipes service.IRecipeService
	images  service.ImageStore
	upload  config.UploadConfig
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, images service.ImageStore, upload config.UploadConfig, m *metrics.Metrics, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		images:  images,
		upload:  upload,
		metrics: m,
		log:     log,
	}
}

func (h *RecipeHandler) RegisterRoutes(v1 *gin.RouterGroup, legacy *gin.RouterGroup) {
	recipes := v1.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("/create-meal", middleware.BodyLimit(h.upload.MaxImageBytes), h.CreateMeal)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", middleware.BodyLimit(h.upload.MaxImageBytes), h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
	legacy.DELETE("/recipes/:id", h.DeleteRecipe)
}

// CreateMeal stores a new recipe with its optional image.
func (h *RecipeHandler) CreateMeal(c *gin.Context) {
	req, upload, err := readRecipeRequest(c, h.upload.MaxImageBytes)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	imageURL, err := h.storeImage(ctx, upload)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	recipe := toModel(req)
	recipe.ImageURL = imageURL

	created, err := h.recipes.CreateRecipe(ctx, recipe)
	if err != nil {
		h.discardImage(imageURL)
		middleware.Fail(c, err)
		return
	}

	h.log.Info("Recipe created", zap.String("id", created.ID.String()), zap.Bool("image", imageURL != ""))
	c.JSON(http.StatusCreated, types.NewRecipeResponse(created))
}

// UpdateRecipe replaces a recipe. Without a new image the current one stays.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	req, upload, err := readRecipeRequest(c, h.upload.MaxImageBytes)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	ctx := c.Request.Context()

	var previous *model.Recipe
	if upload != nil {
		// Fail before storing an image for a recipe that does not exist.
		if previous, err = h.recipes.GetRecipe(ctx, id); err != nil {
			middleware.Fail(c, err)
			return
		}
	}

	imageURL, err := h.storeImage(ctx, upload)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	recipe := toModel(req)
	recipe.ImageURL = imageURL

	updated, err := h.recipes.UpdateRecipe(ctx, id, recipe)
	if err != nil {
		h.discardImage(imageURL)
		middleware.Fail(c, err)
		return
	}

	if previous != nil && previous.ImageURL != "" && previous.ImageURL != updated.ImageURL {
		h.discardImage(previous.ImageURL)
	}

	c.JSON(http.StatusOK, types.NewRecipeResponse(updated))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, types.NewRecipeResponse(recipe))
}

// ListRecipes searches recipes by the optional q parameter.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context(), c.Query("q"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, types.NewRecipeList(recipes))
}

// DeleteRecipe soft-deletes a recipe and answers 204 with no body.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// storeImage validates, downscales and uploads an image. A nil upload stores
// nothing and returns "".
func (h *RecipeHandler) storeImage(ctx context.Context, upload *types.ImageUpload) (string, error) {
	if upload == nil {
		return "", nil
	}
	if h.images == nil {
		return "", apperror.Internal("Image uploads are not configured", nil)
	}

	processed, err := service.ProcessImage(upload.Data, h.upload.MaxDimension)
	if err != nil {
		h.metrics.ImageUpload("rejected")
		if errors.Is(err, service.ErrImageTooLarge) {
			return "", apperror.Validation("", map[string]string{
				imagePart: "Image dimensions are too large",
			}).WithCause(err)
		}
		if errors.Is(err, service.ErrUnsupportedImage) {
			return "", apperror.Validation("", map[string]string{
				imagePart: "Only JPEG, PNG, GIF and WebP images are supported",
			}).WithCause(err)
		}
		return "", apperror.Internal("Failed to process image", err)
	}

	url, err := h.images.Upload(ctx, processed.Key(), processed.Data, processed.ContentType)
	if err != nil {
		h.metrics.ImageUpload("failed")
		return "", apperror.Internal("Failed to store image", err)
	}
	h.metrics.ImageUpload("stored")
	return url, nil
}

// discardImage removes an image that no recipe references. It runs detached
// from the request context so a cancelled request still cleans up.
func (h *RecipeHandler) discardImage(url string) {
	if url == "" || h.images == nil {
		return
	}
	if err := h.images.Delete(context.Background(), url); err != nil {
		h.log.Warn("Failed to delete orphaned image", zap.String("url", url), zap.Error(err))
	}
}
