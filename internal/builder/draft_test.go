package builder

import (
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-manager/backend/internal/model"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

func intPtr(v int) *int { return &v }

func validDraft() Draft {
	return Draft{
		Name:         gofakeit.Dessert(),
		Ingredients:  []string{"flour", "sugar", "butter"},
		Instructions: "1. Mix\n2. Bake",
	}
}

func TestValidate(t *testing.T) {
	t.Run("should accept drafts meeting the minimum", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			d := validDraft()
			if i%2 == 0 {
				d.PrepTime = intPtr(gofakeit.Number(1, 240))
			}
			assert.Empty(t, Validate(d), "draft %+v", d)
		}
	})

	tests := []struct {
		name  string
		edit  func(*Draft)
		field string
	}{
		{"blank name", func(d *Draft) { d.Name = "   " }, FieldName},
		{"blank instructions", func(d *Draft) { d.Instructions = "\n\t" }, FieldInstructions},
		{"no ingredients", func(d *Draft) { d.Ingredients = nil }, FieldIngredients},
		{"zero prep time", func(d *Draft) { d.PrepTime = intPtr(0) }, FieldPrepTime},
		{"negative prep time", func(d *Draft) { d.PrepTime = intPtr(-5) }, FieldPrepTime},
	}
	for _, tt := range tests {
		t.Run("should flag "+tt.name, func(t *testing.T) {
			d := validDraft()
			tt.edit(&d)
			errs := Validate(d)
			assert.Len(t, errs, 1)
			assert.Contains(t, errs, tt.field)
		})
	}

	t.Run("should report every failing field at once", func(t *testing.T) {
		errs := Validate(Draft{PrepTime: intPtr(-1)})
		assert.Len(t, errs, 4)
	})
}

func TestBuildRequest(t *testing.T) {
	t.Run("should omit optional fields that are not set", func(t *testing.T) {
		d := validDraft()
		d.Name = "  Shortbread  "

		data, err := json.Marshal(BuildRequest(d))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"mealName": "Shortbread",
			"ingredientsUsed": ["flour", "sugar", "butter"],
			"recipeDetails": "1. Mix\n2. Bake"
		}`, string(data))
	})

	t.Run("should include prep time and macros when set", func(t *testing.T) {
		d := validDraft()
		d.PrepTime = intPtr(45)
		d.Macros = &types.MacrosPayload{Calories: "300", Fat: "12g"}

		req := BuildRequest(d)
		require.NotNil(t, req.PrepTimeMinutes)
		assert.Equal(t, 45, *req.PrepTimeMinutes)
		require.NotNil(t, req.Macros)
		assert.Equal(t, "12g", req.Macros.Fat.String())
	})

	t.Run("should drop blank macros", func(t *testing.T) {
		d := validDraft()
		d.Macros = &types.MacrosPayload{Calories: " "}
		assert.Nil(t, BuildRequest(d).Macros)
	})

	t.Run("should not alias the draft", func(t *testing.T) {
		d := validDraft()
		req := BuildRequest(d)
		req.IngredientsUsed[0] = "changed"
		assert.Equal(t, "flour", d.Ingredients[0])
	})
}

func TestDraftFromRecipe(t *testing.T) {
	t.Run("should read text details", func(t *testing.T) {
		d := DraftFromRecipe(&types.RecipeResponse{
			ID:              "r1",
			MealName:        "Toast",
			IngredientsUsed: []string{"bread"},
			RecipeDetails:   types.TextDetails("Toast the bread"),
		})
		assert.Equal(t, "r1", d.ID)
		assert.Equal(t, "Toast the bread", d.Instructions)
	})

	t.Run("should read structured details", func(t *testing.T) {
		d := DraftFromRecipe(&types.RecipeResponse{
			ID:            "r2",
			MealName:      "Eggs",
			RecipeDetails: types.StructuredDetails(model.RecipeDetails{Instructions: []string{"Boil", "Peel"}}),
		})
		assert.Equal(t, "Boil\nPeel", d.Instructions)
	})
}
