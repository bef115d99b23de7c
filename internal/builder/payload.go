package builder

import (
	"strings"

	"github.com/pageza/recipe-manager/backend/internal/types"
)

// BuildRequest assembles the JSON part of a create or update call. Prep time
// and macros are included only when set; the image travels separately.
// Drafts carrying structured details send them with the edited instructions.
func BuildRequest(d Draft) *types.RecipeRequest {
	instructions := strings.TrimSpace(d.Instructions)
	req := &types.RecipeRequest{
		MealName:        strings.TrimSpace(d.Name),
		IngredientsUsed: append([]string{}, d.Ingredients...),
		RecipeDetails:   types.TextDetails(instructions),
	}
	if d.Details != nil {
		details := *cloneDetails(d.Details)
		details.Instructions = types.SplitInstructions(instructions)
		req.RecipeDetails = types.StructuredDetails(details.Normalized())
	}
	if d.PrepTime != nil {
		v := *d.PrepTime
		req.PrepTimeMinutes = &v
	}
	if !d.Macros.IsZero() {
		m := *d.Macros
		req.Macros = &m
	}
	return req
}
