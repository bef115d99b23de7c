package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/recipe-manager/backend/internal/types"
)

// ErrNoRecipeJSON is returned when a provider answer holds no JSON object.
var ErrNoRecipeJSON = errors.New("could not find JSON object in response")

// ParseGeneratedRecipe extracts the JSON object from a provider answer,
// which may be wrapped in prose or a markdown fence, and reshapes it.
func ParseGeneratedRecipe(content string) (*types.GeneratedRecipe, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || start > end {
		return nil, ErrNoRecipeJSON
	}

	var raw types.RawGeneratedRecipe
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return Reshape(raw), nil
}

// Reshape converts the provider's payload into the application schema: list
// fields are never nil, instruction lines carry no ordinal markers, and
// nutrient values are strings.
func Reshape(raw types.RawGeneratedRecipe) *types.GeneratedRecipe {
	ingredients := []string(raw.IngredientsUsed)
	if ingredients == nil {
		ingredients = []string{}
	}
	return &types.GeneratedRecipe{
		MealName:        strings.TrimSpace(raw.MealName.String()),
		IngredientsUsed: ingredients,
		RecipeDetails:   raw.RecipeDetails.Resolve(),
		ImageURL:        strings.TrimSpace(raw.ImageURL.String()),
	}
}
