package testhelpers

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"github.com/pageza/recipe-manager/backend/internal/model"
)

// CreateTestRecipe stores a recipe with generated content. Options run before
// the insert and may override any field.
func CreateTestRecipe(t *testing.T, db *gorm.DB, opts ...func(*model.Recipe)) *model.Recipe {
	t.Helper()
	prep := gofakeit.Number(5, 120)
	recipe := &model.Recipe{
		MealName:        gofakeit.Dinner(),
		IngredientsUsed: model.JSONBStringArray{gofakeit.Vegetable(), gofakeit.Fruit(), gofakeit.Vegetable()},
		RecipeDetails: model.RecipeDetails{
			Instructions: []string{gofakeit.Sentence(6), gofakeit.Sentence(8)},
		}.Normalized(),
		PrepTimeMinutes: &prep,
		Macros: &model.Macros{
			Calories: gofakeit.DigitN(3),
			Protein:  gofakeit.DigitN(2) + "g",
		},
	}
	for _, opt := range opts {
		opt(recipe)
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}
