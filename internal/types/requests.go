package types

import (
	"strings"

	"github.com/pageza/recipe-manager/backend/internal/model"
)

// RecipeRequest is the JSON "request" part of create-meal and update calls.
// Optional fields are omitted when absent.
type RecipeRequest struct {
	MealName        string             `json:"mealName" binding:"required,max=255"`
	IngredientsUsed []string           `json:"ingredientsUsed" binding:"required,min=1,dive,required"`
	RecipeDetails   RecipeDetailsField `json:"recipeDetails"`
	PrepTimeMinutes *int               `json:"prepTimeMinutes,omitempty" binding:"omitempty,gt=0"`
	Macros          *MacrosPayload     `json:"macros,omitempty"`
}

// MacrosPayload carries macro values as text; numbers are accepted too.
type MacrosPayload struct {
	Calories FlexString `json:"calories"`
	Protein  FlexString `json:"protein"`
	Carbs    FlexString `json:"carbs"`
	Fat      FlexString `json:"fat"`
}

// IsZero reports whether every value is blank.
func (m *MacrosPayload) IsZero() bool {
	return m == nil || strings.TrimSpace(string(m.Calories+m.Protein+m.Carbs+m.Fat)) == ""
}

// ToModel converts the payload, returning nil when nothing was provided.
func (m *MacrosPayload) ToModel() *model.Macros {
	if m.IsZero() {
		return nil
	}
	return &model.Macros{
		Calories: m.Calories.String(),
		Protein:  m.Protein.String(),
		Carbs:    m.Carbs.String(),
		Fat:      m.Fat.String(),
	}
}

// MacrosFromModel is the inverse of ToModel.
func MacrosFromModel(m *model.Macros) *MacrosPayload {
	if m == nil {
		return nil
	}
	return &MacrosPayload{
		Calories: FlexString(m.Calories),
		Protein:  FlexString(m.Protein),
		Carbs:    FlexString(m.Carbs),
		Fat:      FlexString(m.Fat),
	}
}

// GenerateMealRequest is the body of POST /v1/recipes/generate-meal.
type GenerateMealRequest struct {
	Ingredients []string `json:"ingredients"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ImageUpload is an image attached to a create or update request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
