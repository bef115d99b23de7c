package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-manager/backend/internal/model"
)

func TestStripStepMarker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1. Preheat oven", "Preheat oven"},
		{"2) Mix", "Mix"},
		{"Step 3: Bake", "Bake"},
		{"step 4 - Rest", "Rest"},
		{"STEP 5. Serve", "Serve"},
		{"  12.   Garnish ", "Garnish"},
		{"1.5 cups of flour go in", "1.5 cups of flour go in"},
		{"Stir well", "Stir well"},
		{"10 minutes on low heat", "10 minutes on low heat"},
		{"3)", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripStepMarker(tt.in))
		})
	}
}

func TestSplitInstructions(t *testing.T) {
	got := SplitInstructions("1. Preheat oven\n2) Mix\r\n\nStep 3: Bake\n   ")
	assert.Equal(t, []string{"Preheat oven", "Mix", "Bake"}, got)
	assert.Equal(t, []string{}, SplitInstructions(""))
}

func TestRecipeDetailsFieldAcceptsText(t *testing.T) {
	var f RecipeDetailsField
	require.NoError(t, json.Unmarshal([]byte(`"1. Boil water\n2. Add pasta"`), &f))

	assert.Equal(t, DetailsText, f.Kind)
	resolved := f.Resolve()
	assert.Equal(t, []string{"Boil water", "Add pasta"}, resolved.Instructions)
	assert.Equal(t, []string{}, resolved.IngredientsList)
	assert.Equal(t, "1. Boil water\n2. Add pasta", f.InstructionsText())
}

func TestRecipeDetailsFieldAcceptsObject(t *testing.T) {
	payload := `{
		"ingredientsList": ["200g pasta", null, ""],
		"instructions": "Step 1: Boil\nStep 2: Drain",
		"nutritionalInformation": {"calories": 350, "protein": "12g", "fat": null}
	}`
	var f RecipeDetailsField
	require.NoError(t, json.Unmarshal([]byte(payload), &f))

	assert.Equal(t, DetailsStructured, f.Kind)
	d := f.Resolve()
	assert.Equal(t, []string{"200g pasta"}, d.IngredientsList)
	assert.Equal(t, []string{"Boil", "Drain"}, d.Instructions)
	assert.Equal(t, []string{}, d.EquipmentNeeded)
	assert.Equal(t, []string{}, d.ServingSuggestions)
	assert.Equal(t, model.NutritionalInformation{Calories: "350", Protein: "12g"}, d.NutritionalInformation)
}

func TestRecipeDetailsFieldNullAndInvalid(t *testing.T) {
	var f RecipeDetailsField
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Equal(t, DetailsEmpty, f.Kind)
	assert.Equal(t, []string{}, f.Resolve().Instructions)

	assert.Error(t, json.Unmarshal([]byte(`42`), &f))
}

func TestRecipeDetailsFieldMarshalKeepsShape(t *testing.T) {
	b, err := json.Marshal(TextDetails("Mix"))
	require.NoError(t, err)
	assert.JSONEq(t, `"Mix"`, string(b))

	b, err = json.Marshal(StructuredDetails(model.RecipeDetails{Instructions: []string{"Mix"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ingredientsList":[],"equipmentNeeded":[],"instructions":["Mix"],"servingSuggestions":[],
		"nutritionalInformation":{"calories":"","protein":"","carbohydrates":"","fat":""}}`, string(b))
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		in   string
		want FlexString
	}{
		{`"20g"`, "20g"},
		{`350`, "350"},
		{`12.5`, "12.5"},
		{`null`, ""},
		{`true`, "true"},
		{`{"value": 20, "unit": "g"}`, `{"value":20,"unit":"g"}`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestMissingNutrientsDecodeAsEmpty(t *testing.T) {
	var raw RawGeneratedRecipe
	require.NoError(t, json.Unmarshal([]byte(`{"mealName": "Soup", "recipeDetails": {"nutritionalInformation": {}}}`), &raw))

	d := raw.RecipeDetails.Resolve()
	assert.Equal(t, model.NutritionalInformation{}, d.NutritionalInformation)
	assert.Empty(t, raw.IngredientsUsed)
}

func TestMacrosPayload(t *testing.T) {
	var m MacrosPayload
	require.NoError(t, json.Unmarshal([]byte(`{"calories": 500, "protein": "30g"}`), &m))
	assert.Equal(t, &model.Macros{Calories: "500", Protein: "30g"}, m.ToModel())

	empty := &MacrosPayload{Fat: " "}
	assert.True(t, empty.IsZero())
	assert.Nil(t, empty.ToModel())

	assert.Nil(t, MacrosFromModel(nil))
	assert.Equal(t, FlexString("9g"), MacrosFromModel(&model.Macros{Fat: "9g"}).Fat)
}
