package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pageza/recipe-manager/backend/internal/model"
)

// DetailsKind tells which shape a RecipeDetailsField arrived in.
type DetailsKind int

const (
	DetailsEmpty DetailsKind = iota
	DetailsText
	DetailsStructured
)

// RecipeDetailsField is the recipeDetails value as it travels over the wire:
// either free text or the structured object. Resolve converts either form
// into model.RecipeDetails once, at the boundary.
type RecipeDetailsField struct {
	Kind       DetailsKind
	Text       string
	Structured model.RecipeDetails
}

// TextDetails wraps free-text instructions.
func TextDetails(text string) RecipeDetailsField {
	return RecipeDetailsField{Kind: DetailsText, Text: text}
}

// StructuredDetails wraps an already structured value.
func StructuredDetails(d model.RecipeDetails) RecipeDetailsField {
	return RecipeDetailsField{Kind: DetailsStructured, Structured: d}
}

type detailsWire struct {
	IngredientsList        StringList    `json:"ingredientsList"`
	EquipmentNeeded        StringList    `json:"equipmentNeeded"`
	Instructions           StringList    `json:"instructions"`
	ServingSuggestions     StringList    `json:"servingSuggestions"`
	NutritionalInformation nutritionWire `json:"nutritionalInformation"`
}

type nutritionWire struct {
	Calories      FlexString `json:"calories"`
	Protein       FlexString `json:"protein"`
	Carbohydrates FlexString `json:"carbohydrates"`
	Fat           FlexString `json:"fat"`
}

func (f *RecipeDetailsField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*f = RecipeDetailsField{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = TextDetails(s)
	case data[0] == '{':
		var w detailsWire
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("decoding recipeDetails: %w", err)
		}
		*f = StructuredDetails(model.RecipeDetails{
			IngredientsList:    w.IngredientsList,
			EquipmentNeeded:    w.EquipmentNeeded,
			Instructions:       CleanInstructions(w.Instructions),
			ServingSuggestions: w.ServingSuggestions,
			NutritionalInformation: model.NutritionalInformation{
				Calories:      w.NutritionalInformation.Calories.String(),
				Protein:       w.NutritionalInformation.Protein.String(),
				Carbohydrates: w.NutritionalInformation.Carbohydrates.String(),
				Fat:           w.NutritionalInformation.Fat.String(),
			},
		}.Normalized())
	default:
		return fmt.Errorf("recipeDetails must be a string or an object")
	}
	return nil
}

func (f RecipeDetailsField) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case DetailsText:
		return json.Marshal(f.Text)
	case DetailsStructured:
		return json.Marshal(f.Structured)
	default:
		return []byte("null"), nil
	}
}

// Resolve returns the structured form. Text becomes the instruction list.
func (f RecipeDetailsField) Resolve() model.RecipeDetails {
	switch f.Kind {
	case DetailsText:
		return model.RecipeDetails{Instructions: SplitInstructions(f.Text)}.Normalized()
	case DetailsStructured:
		return f.Structured.Normalized()
	default:
		return model.RecipeDetails{}.Normalized()
	}
}

// InstructionsText returns the instructions as free text whatever the shape.
func (f RecipeDetailsField) InstructionsText() string {
	if f.Kind == DetailsText {
		return f.Text
	}
	return f.Resolve().InstructionsText()
}

// RecipeResponse is a recipe as read by API consumers. recipeDetails may be
// either shape depending on who stored it.
type RecipeResponse struct {
	ID              string             `json:"id"`
	MealName        string             `json:"mealName"`
	IngredientsUsed []string           `json:"ingredientsUsed"`
	RecipeDetails   RecipeDetailsField `json:"recipeDetails"`
	PrepTimeMinutes *int               `json:"prepTimeMinutes,omitempty"`
	Macros          *MacrosPayload     `json:"macros,omitempty"`
	ImageURL        string             `json:"imageUrl"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// NewRecipeResponse converts a stored recipe for the wire.
func NewRecipeResponse(r *model.Recipe) RecipeResponse {
	ingredients := []string(r.IngredientsUsed)
	if ingredients == nil {
		ingredients = []string{}
	}
	return RecipeResponse{
		ID:              r.ID.String(),
		MealName:        r.MealName,
		IngredientsUsed: ingredients,
		RecipeDetails:   StructuredDetails(r.RecipeDetails.Normalized()),
		PrepTimeMinutes: r.PrepTimeMinutes,
		Macros:          MacrosFromModel(r.Macros),
		ImageURL:        r.ImageURL,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// RecipeList is the body of GET /v1/recipes.
type RecipeList struct {
	Recipes []RecipeResponse `json:"recipes"`
}

// NewRecipeList converts a page of stored recipes. The list is never nil.
func NewRecipeList(recipes []*model.Recipe) RecipeList {
	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, NewRecipeResponse(r))
	}
	return RecipeList{Recipes: out}
}

// GeneratedRecipe is the reshaped result of a generation call. List fields
// are never nil and nutrient values are always strings.
type GeneratedRecipe struct {
	MealName        string              `json:"mealName"`
	IngredientsUsed []string            `json:"ingredientsUsed"`
	RecipeDetails   model.RecipeDetails `json:"recipeDetails"`
	ImageURL        string              `json:"imageUrl"`
}

// RawGeneratedRecipe is the provider's JSON before reshaping.
type RawGeneratedRecipe struct {
	MealName        FlexString         `json:"mealName"`
	IngredientsUsed StringList         `json:"ingredientsUsed"`
	RecipeDetails   RecipeDetailsField `json:"recipeDetails"`
	ImageURL        FlexString         `json:"imageUrl"`
}
