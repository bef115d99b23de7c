package model

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Macros represents nutrition information for a recipe. Values are kept as
// entered so unit suffixes like "20g" survive.
type Macros struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	Calories string    `gorm:"size:64" json:"calories"`
	Protein  string    `gorm:"size:64" json:"protein"`
	Carbs    string    `gorm:"size:64" json:"carbs"`
	Fat      string    `gorm:"size:64" json:"fat"`
}

func (m *Macros) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsZero reports whether every value is blank.
func (m *Macros) IsZero() bool {
	return m == nil || strings.TrimSpace(m.Calories+m.Protein+m.Carbs+m.Fat) == ""
}
