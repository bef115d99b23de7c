package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/metrics"
	"github.com/pageza/recipe-manager/backend/internal/mocks"
	"github.com/pageza/recipe-manager/backend/internal/model"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

const providerAnswer = "Here you go:\n```json\n" + `{
	"mealName": "Chicken Tomato Rice",
	"ingredientsUsed": ["chicken", "rice", "tomatoes"],
	"recipeDetails": {
		"ingredientsList": ["200g chicken", "1 cup rice", "2 tomatoes"],
		"equipmentNeeded": ["Pan"],
		"instructions": ["1. Cook the rice", "2) Sear the chicken", "Step 3: Combine", ""],
		"servingSuggestions": "Serve hot",
		"nutritionalInformation": {"calories": 520, "protein": "38g", "carbohydrates": "55g"}
	}
}` + "\n```"

func TestGenerationService_Generate(t *testing.T) {
	ctx := context.Background()
	ingredients := []string{" chicken", "rice ", "tomatoes"}

	t.Run("should reshape the provider answer", func(t *testing.T) {
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, RecipeSystemPrompt, "Create a recipe using these ingredients: chicken, rice, tomatoes.").
			Return(providerAnswer, nil).Once()

		svc := NewGenerationService(provider, zaptest.NewLogger(t), WithMetrics(metrics.New()))
		recipe, err := svc.Generate(ctx, ingredients)
		require.NoError(t, err)

		assert.Equal(t, "Chicken Tomato Rice", recipe.MealName)
		assert.Equal(t, []string{"chicken", "rice", "tomatoes"}, recipe.IngredientsUsed)
		assert.Equal(t, []string{"Cook the rice", "Sear the chicken", "Combine"}, recipe.RecipeDetails.Instructions)
		assert.Equal(t, []string{"Serve hot"}, recipe.RecipeDetails.ServingSuggestions)
		assert.Equal(t, model.NutritionalInformation{
			Calories:      "520",
			Protein:       "38g",
			Carbohydrates: "55g",
			Fat:           "",
		}, recipe.RecipeDetails.NutritionalInformation)
		assert.Empty(t, recipe.ImageURL)
		provider.AssertExpectations(t)
	})

	t.Run("should fail fast on invalid ingredients", func(t *testing.T) {
		for _, list := range [][]string{nil, {}, {"ok"}, {"chicken", "250"}, {"chicken", "  "}} {
			provider := new(mocks.MockChatProvider)
			svc := NewGenerationService(provider, zaptest.NewLogger(t))

			recipe, err := svc.Generate(ctx, list)
			assert.Nil(t, recipe)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.CategoryValidation), "list %q", list)

			var appErr *apperror.Error
			require.True(t, errors.As(err, &appErr))
			assert.Contains(t, appErr.Fields, "ingredients")
			provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("should pass provider categories through", func(t *testing.T) {
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("", apperror.FromProvider(http.StatusUnauthorized, "bad key"))

		svc := NewGenerationService(provider, zaptest.NewLogger(t))
		_, err := svc.Generate(ctx, ingredients)
		assert.True(t, apperror.Is(err, apperror.CategoryAuth))
	})

	t.Run("should treat uncategorized failures as network errors", func(t *testing.T) {
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("", context.DeadlineExceeded)

		svc := NewGenerationService(provider, zaptest.NewLogger(t))
		_, err := svc.Generate(ctx, ingredients)
		assert.True(t, apperror.Is(err, apperror.CategoryNetwork))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("should report unreadable answers as server errors", func(t *testing.T) {
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("I cannot help with that.", nil)

		svc := NewGenerationService(provider, zaptest.NewLogger(t))
		_, err := svc.Generate(ctx, ingredients)

		var appErr *apperror.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CategoryServer, appErr.Category)
		assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus())
	})

	t.Run("should fall back to the request ingredients", func(t *testing.T) {
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return(`{"mealName": "Plain Rice", "recipeDetails": "Boil rice"}`, nil)

		svc := NewGenerationService(provider, zaptest.NewLogger(t))
		recipe, err := svc.Generate(ctx, ingredients)
		require.NoError(t, err)
		assert.Equal(t, []string{"chicken", "rice", "tomatoes"}, recipe.IngredientsUsed)
		assert.Equal(t, []string{"Boil rice"}, recipe.RecipeDetails.Instructions)
		assert.Equal(t, []string{}, recipe.RecipeDetails.IngredientsList)
	})
}

func TestGenerationService_Cache(t *testing.T) {
	ctx := context.Background()
	ingredients := []string{"chicken", "rice", "tomatoes"}
	key := GeneratedRecipeKey(ingredients)

	t.Run("should serve hits without calling the provider", func(t *testing.T) {
		cached := &types.GeneratedRecipe{MealName: "Cached", IngredientsUsed: ingredients}
		cache := new(mocks.MockRecipeCache)
		cache.On("Get", mock.Anything, key).Return(cached, true, nil)
		provider := new(mocks.MockChatProvider)

		svc := NewGenerationService(provider, zaptest.NewLogger(t), WithRecipeCache(cache))
		recipe, err := svc.Generate(ctx, []string{"Chicken", "RICE", " tomatoes "})
		require.NoError(t, err)
		assert.Same(t, cached, recipe)
		provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should store misses and ignore cache failures", func(t *testing.T) {
		cache := new(mocks.MockRecipeCache)
		cache.On("Get", mock.Anything, key).Return(nil, false, errors.New("redis down"))
		cache.On("Set", mock.Anything, key, mock.AnythingOfType("*types.GeneratedRecipe")).Return(errors.New("redis down"))
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(providerAnswer, nil)

		svc := NewGenerationService(provider, zaptest.NewLogger(t), WithRecipeCache(cache))
		recipe, err := svc.Generate(ctx, ingredients)
		require.NoError(t, err)
		assert.Equal(t, "Chicken Tomato Rice", recipe.MealName)
		cache.AssertExpectations(t)
	})

	t.Run("should not cache failures", func(t *testing.T) {
		cache := new(mocks.MockRecipeCache)
		cache.On("Get", mock.Anything, key).Return(nil, false, nil)
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("", apperror.FromProvider(http.StatusInternalServerError, ""))

		svc := NewGenerationService(provider, zaptest.NewLogger(t), WithRecipeCache(cache))
		_, err := svc.Generate(ctx, ingredients)
		assert.True(t, apperror.Is(err, apperror.CategoryServer))
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGenerationService_Images(t *testing.T) {
	ctx := context.Background()
	ingredients := []string{"chicken", "rice", "tomatoes"}

	t.Run("should attach a generated image", func(t *testing.T) {
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(providerAnswer, nil)
		images := new(mocks.MockImageGenerator)
		images.On("GenerateRecipeImage", mock.Anything, "Chicken Tomato Rice", ingredients).
			Return("/uploads/recipe-images/a.png", nil)

		svc := NewGenerationService(provider, zaptest.NewLogger(t), WithImageGenerator(images))
		recipe, err := svc.Generate(ctx, ingredients)
		require.NoError(t, err)
		assert.Equal(t, "/uploads/recipe-images/a.png", recipe.ImageURL)
	})

	t.Run("should leave image empty when generation fails", func(t *testing.T) {
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(providerAnswer, nil)
		images := new(mocks.MockImageGenerator)
		images.On("GenerateRecipeImage", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("quota exceeded"))

		svc := NewGenerationService(provider, zaptest.NewLogger(t), WithImageGenerator(images))
		recipe, err := svc.Generate(ctx, ingredients)
		require.NoError(t, err)
		assert.Empty(t, recipe.ImageURL)
	})

	t.Run("should keep an image url from the provider", func(t *testing.T) {
		provider := new(mocks.MockChatProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return(`{"mealName": "Soup", "imageUrl": "https://img.example/soup.png"}`, nil)
		images := new(mocks.MockImageGenerator)

		svc := NewGenerationService(provider, zaptest.NewLogger(t), WithImageGenerator(images))
		recipe, err := svc.Generate(ctx, ingredients)
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/soup.png", recipe.ImageURL)
		images.AssertNotCalled(t, "GenerateRecipeImage", mock.Anything, mock.Anything, mock.Anything)
	})
}
