package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/ingredient"
	"github.com/pageza/recipe-manager/backend/internal/metrics"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// RecipeSystemPrompt fixes the schema the provider must answer with.
const RecipeSystemPrompt = `You are a professional chef. Create one recipe that uses the ingredients the user lists.
Respond with a single JSON object and nothing else, using exactly these keys:
{
  "mealName": string,
  "ingredientsUsed": [string],
  "recipeDetails": {
    "ingredientsList": [string, with quantities],
    "equipmentNeeded": [string],
    "instructions": [string, one step per entry],
    "servingSuggestions": [string],
    "nutritionalInformation": {"calories": string, "protein": string, "carbohydrates": string, "fat": string}
  }
}
Do not wrap the JSON in markdown.`

// GenerationService validates ingredient lists, asks the chat provider for a
// recipe and reshapes the answer. Cache and image generator are optional.
type GenerationService struct {
	provider ChatProvider
	images   ImageGenerator
	cache    RecipeCache
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// GenerationOption configures optional collaborators.
type GenerationOption func(*GenerationService)

func WithRecipeCache(c RecipeCache) GenerationOption {
	return func(s *GenerationService) { s.cache = c }
}

func WithImageGenerator(g ImageGenerator) GenerationOption {
	return func(s *GenerationService) { s.images = g }
}

func WithMetrics(m *metrics.Metrics) GenerationOption {
	return func(s *GenerationService) { s.metrics = m }
}

func NewGenerationService(provider ChatProvider, log *zap.Logger, opts ...GenerationOption) *GenerationService {
	s := &GenerationService{provider: provider, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate returns a recipe for the ingredients. Invalid lists fail with a
// validation error before any provider call.
func (s *GenerationService) Generate(ctx context.Context, ingredients []string) (*types.GeneratedRecipe, error) {
	list, err := ingredient.ValidateList(ingredients)
	if err != nil {
		s.metrics.ObserveGeneration(string(apperror.CategoryValidation), 0)
		return nil, validationError(err)
	}

	key := GeneratedRecipeKey(list)
	if cached := s.lookup(ctx, key); cached != nil {
		s.metrics.ObserveGeneration("cached", 0)
		return cached, nil
	}

	start := time.Now()
	content, err := s.provider.Complete(ctx, RecipeSystemPrompt, userPrompt(list))
	elapsed := time.Since(start)
	if err != nil {
		appErr := providerError(err)
		s.metrics.ObserveGeneration(string(appErr.Category), elapsed)
		s.log.Warn("Recipe generation failed",
			zap.String("category", string(appErr.Category)),
			zap.Int("status", appErr.Status),
			zap.Error(err),
		)
		return nil, appErr
	}

	recipe, err := ParseGeneratedRecipe(content)
	if err != nil {
		s.metrics.ObserveGeneration(string(apperror.CategoryServer), elapsed)
		s.log.Error("Unreadable provider response", zap.Error(err), zap.Int("length", len(content)))
		return nil, badGateway(err)
	}
	if len(recipe.IngredientsUsed) == 0 {
		recipe.IngredientsUsed = list
	}
	s.metrics.ObserveGeneration("success", elapsed)

	if recipe.ImageURL == "" && s.images != nil && recipe.MealName != "" {
		url, err := s.images.GenerateRecipeImage(ctx, recipe.MealName, recipe.IngredientsUsed)
		if err != nil {
			s.log.Warn("Recipe image generation failed", zap.String("meal_name", recipe.MealName), zap.Error(err))
		} else {
			recipe.ImageURL = url
		}
	}

	s.store(ctx, key, recipe)
	s.log.Info("Recipe generated",
		zap.String("meal_name", recipe.MealName),
		zap.Int("ingredients", len(list)),
		zap.Duration("provider_time", elapsed),
	)
	return recipe, nil
}

func (s *GenerationService) lookup(ctx context.Context, key string) *types.GeneratedRecipe {
	if s.cache == nil {
		return nil
	}
	recipe, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.CacheLookup("error")
		s.log.Warn("Generation cache read failed", zap.Error(err))
		return nil
	case !ok:
		s.metrics.CacheLookup("miss")
		return nil
	}
	s.metrics.CacheLookup("hit")
	return recipe
}

func (s *GenerationService) store(ctx context.Context, key string, recipe *types.GeneratedRecipe) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, recipe); err != nil {
		s.log.Warn("Generation cache write failed", zap.Error(err))
	}
}

func userPrompt(list []string) string {
	return fmt.Sprintf("Create a recipe using these ingredients: %s.", strings.Join(list, ", "))
}

func validationError(err error) *apperror.Error {
	fields := map[string]string{"ingredients": err.Error()}
	var listErr *ingredient.ListError
	if errors.As(err, &listErr) {
		fields["ingredients"] = fmt.Sprintf("%q: %v", strings.TrimSpace(listErr.Value), listErr.Err)
	}
	return apperror.Validation("", fields).WithCause(err)
}

// providerError makes sure every failure carries exactly one category.
// Context cancellation and deadlines count as network failures.
func providerError(err error) *apperror.Error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Network(err)
}
