package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, a)
}

// MarshalJSON writes an empty array instead of null.
func (a JSONBStringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// NutritionalInformation is free-form text per nutrient, e.g. "20g".
type NutritionalInformation struct {
	Calories      string `json:"calories"`
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fat           string `json:"fat"`
}

// RecipeDetails is the structured body of a recipe. Stored as JSONB.
type RecipeDetails struct {
	IngredientsList        []string               `json:"ingredientsList"`
	EquipmentNeeded        []string               `json:"equipmentNeeded"`
	Instructions           []string               `json:"instructions"`
	ServingSuggestions     []string               `json:"servingSuggestions"`
	NutritionalInformation NutritionalInformation `json:"nutritionalInformation"`
}

// Normalized returns a copy whose list fields are never nil.
func (d RecipeDetails) Normalized() RecipeDetails {
	d.IngredientsList = nonNil(d.IngredientsList)
	d.EquipmentNeeded = nonNil(d.EquipmentNeeded)
	d.Instructions = nonNil(d.Instructions)
	d.ServingSuggestions = nonNil(d.ServingSuggestions)
	return d
}

// InstructionsText joins the steps back into the free-text form.
func (d RecipeDetails) InstructionsText() string {
	return strings.Join(d.Instructions, "\n")
}

func (d RecipeDetails) MarshalJSON() ([]byte, error) {
	type plain RecipeDetails
	return json.Marshal(plain(d.Normalized()))
}

func (d RecipeDetails) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *RecipeDetails) Scan(value interface{}) error {
	if value == nil {
		*d = RecipeDetails{}.Normalized()
		return nil
	}
	b, err := scanBytes(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, d); err != nil {
		return err
	}
	*d = d.Normalized()
	return nil
}

// Recipe is a stored recipe. Macros is optional and owned by the recipe.
type Recipe struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	MealName        string           `gorm:"size:255;not null" json:"mealName"`
	IngredientsUsed JSONBStringArray `gorm:"type:jsonb;not null" json:"ingredientsUsed"`
	RecipeDetails   RecipeDetails    `gorm:"type:jsonb;not null" json:"recipeDetails"`
	PrepTimeMinutes *int             `json:"prepTimeMinutes,omitempty"`
	ImageURL        string           `gorm:"size:1024" json:"imageUrl"`
	Macros          *Macros          `gorm:"constraint:OnDelete:CASCADE" json:"macros,omitempty"`
	Embedding       *pgvector.Vector `gorm:"type:vector(3)" json:"-"`
}

// BeforeCreate assigns an ID so sqlite and postgres behave the same.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// SearchText is the text the recipe embedding is computed from.
func (r *Recipe) SearchText() string {
	return r.MealName + " " + strings.Join(r.IngredientsUsed, " ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T for JSON column", value)
	}
}
