package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedRecipe(t *testing.T) {
	t.Run("should extract json from surrounding prose", func(t *testing.T) {
		recipe, err := ParseGeneratedRecipe("Sure! ```json\n{\"mealName\": \" Bean Chili \", \"ingredientsUsed\": \"beans\\nonion\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, "Bean Chili", recipe.MealName)
		assert.Equal(t, []string{"beans", "onion"}, recipe.IngredientsUsed)
	})

	t.Run("should never return nil lists", func(t *testing.T) {
		recipe, err := ParseGeneratedRecipe(`{"mealName": "Toast", "ingredientsUsed": null, "recipeDetails": null}`)
		require.NoError(t, err)
		assert.Equal(t, []string{}, recipe.IngredientsUsed)
		assert.Equal(t, []string{}, recipe.RecipeDetails.IngredientsList)
		assert.Equal(t, []string{}, recipe.RecipeDetails.EquipmentNeeded)
		assert.Equal(t, []string{}, recipe.RecipeDetails.Instructions)
		assert.Equal(t, []string{}, recipe.RecipeDetails.ServingSuggestions)
		assert.Equal(t, "", recipe.RecipeDetails.NutritionalInformation.Calories)
	})

	t.Run("should strip markers from text instructions", func(t *testing.T) {
		recipe, err := ParseGeneratedRecipe(`{"recipeDetails": "1. Toast bread\n\n2) Butter it\nSTEP 3: Eat"}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Toast bread", "Butter it", "Eat"}, recipe.RecipeDetails.Instructions)
	})

	t.Run("should fail without a json object", func(t *testing.T) {
		_, err := ParseGeneratedRecipe("no recipe today")
		assert.ErrorIs(t, err, ErrNoRecipeJSON)

		_, err = ParseGeneratedRecipe("} backwards {")
		assert.ErrorIs(t, err, ErrNoRecipeJSON)
	})

	t.Run("should fail on malformed json", func(t *testing.T) {
		_, err := ParseGeneratedRecipe(`{"mealName": }`)
		assert.Error(t, err)
	})
}

func TestGeneratedRecipeKey(t *testing.T) {
	a := GeneratedRecipeKey([]string{"Chicken", " rice"})
	b := GeneratedRecipeKey([]string{"chicken", "RICE"})
	c := GeneratedRecipeKey([]string{"rice", "chicken"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "recipe:generated:")
}

func TestGenerateEmbedding(t *testing.T) {
	v1 := GenerateEmbedding("Tomato Soup tomatoes basil")
	v2 := GenerateEmbedding("tomato soup TOMATOES basil")
	assert.Equal(t, v1.Slice(), v2.Slice())
	assert.Len(t, v1.Slice(), EmbeddingDimensions)

	assert.Equal(t, []float32{0, 0, 0}, GenerateEmbedding("  123 ").Slice())

	vec, err := LocalEmbedder{}.GenerateEmbedding("rice")
	require.NoError(t, err)
	assert.Equal(t, GenerateEmbedding("rice").Slice(), vec.Slice())
}
