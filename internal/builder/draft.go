// Package builder holds the client-side recipe form: the draft being edited,
// its validation rules, the preview/submit state machine and the ingredient
// driven generator.
package builder

import (
	"strings"

	"github.com/pageza/recipe-manager/backend/internal/model"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// Form field names used as FormErrors keys.
const (
	FieldName         = "name"
	FieldIngredients  = "ingredients"
	FieldInstructions = "instructions"
	FieldPrepTime     = "prepTime"
)

// Draft is the recipe being edited. ID is set when editing a stored recipe.
// Details holds the structured fields of a loaded or generated recipe that the
// form does not edit; Instructions always wins over Details.Instructions.
type Draft struct {
	ID           string
	Name         string
	Ingredients  []string
	Instructions string
	PrepTime     *int
	Macros       *types.MacrosPayload
	Image        *types.ImageUpload
	Details      *model.RecipeDetails
}

// Clone returns a copy that shares no slices or pointers with d.
func (d Draft) Clone() Draft {
	out := d
	out.Ingredients = append([]string(nil), d.Ingredients...)
	if d.PrepTime != nil {
		v := *d.PrepTime
		out.PrepTime = &v
	}
	if d.Macros != nil {
		m := *d.Macros
		out.Macros = &m
	}
	if d.Image != nil {
		img := *d.Image
		img.Data = append([]byte(nil), d.Image.Data...)
		out.Image = &img
	}
	out.Details = cloneDetails(d.Details)
	return out
}

func cloneDetails(d *model.RecipeDetails) *model.RecipeDetails {
	if d == nil {
		return nil
	}
	out := *d
	out.IngredientsList = append([]string{}, d.IngredientsList...)
	out.EquipmentNeeded = append([]string{}, d.EquipmentNeeded...)
	out.Instructions = append([]string{}, d.Instructions...)
	out.ServingSuggestions = append([]string{}, d.ServingSuggestions...)
	return &out
}

// FormErrors maps a field name to its message. Empty means valid.
type FormErrors map[string]string

func (e FormErrors) clone() FormErrors {
	out := make(FormErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Validate checks d without side effects.
func Validate(d Draft) FormErrors {
	errs := FormErrors{}
	if strings.TrimSpace(d.Name) == "" {
		errs[FieldName] = "Recipe name is required"
	}
	if strings.TrimSpace(d.Instructions) == "" {
		errs[FieldInstructions] = "Instructions are required"
	}
	if len(d.Ingredients) == 0 {
		errs[FieldIngredients] = msgIngredientRequired
	}
	if d.PrepTime != nil && *d.PrepTime <= 0 {
		errs[FieldPrepTime] = "Prep time must be a positive number of minutes"
	}
	return errs
}

const msgIngredientRequired = "At least one ingredient is required"

// DraftFromRecipe loads a stored recipe for editing. Details in either wire
// shape become free-text instructions; structured details are kept so that
// saving the draft does not drop them.
func DraftFromRecipe(r *types.RecipeResponse) Draft {
	d := Draft{
		ID:           r.ID,
		Name:         r.MealName,
		Ingredients:  append([]string(nil), r.IngredientsUsed...),
		Instructions: r.RecipeDetails.InstructionsText(),
		PrepTime:     r.PrepTimeMinutes,
		Macros:       r.Macros,
	}
	if r.RecipeDetails.Kind == types.DetailsStructured {
		details := r.RecipeDetails.Resolve()
		d.Details = cloneDetails(&details)
	}
	return d
}

// DraftFromGenerated starts a new draft from a generated recipe.
func DraftFromGenerated(g *types.GeneratedRecipe) Draft {
	details := g.RecipeDetails.Normalized()
	return Draft{
		Name:         g.MealName,
		Ingredients:  append([]string(nil), g.IngredientsUsed...),
		Instructions: g.RecipeDetails.InstructionsText(),
		Details:      cloneDetails(&details),
	}
}
