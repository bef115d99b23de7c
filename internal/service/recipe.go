package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/metrics"
	"github.com/pageza/recipe-manager/backend/internal/model"
)

// listLimit caps the number of recipes returned by ListRecipes.
const listLimit = 100

// RecipeService handles recipe operations
type RecipeService struct {
	db               *gorm.DB
	embeddingService EmbeddingServiceInterface
	metrics          *metrics.Metrics
	log              *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, embeddingService EmbeddingServiceInterface, m *metrics.Metrics, log *zap.Logger) *RecipeService {
	if embeddingService == nil {
		embeddingService = LocalEmbedder{}
	}
	return &RecipeService{
		db:               db,
		embeddingService: embeddingService,
		metrics:          m,
		log:              log,
	}
}

func (s *RecipeService) vectorSearch() bool {
	return s.db.Dialector.Name() == "postgres"
}

func (s *RecipeService) embed(recipe *model.Recipe) {
	if !s.vectorSearch() {
		return
	}
	vec, err := s.embeddingService.GenerateEmbedding(recipe.SearchText())
	if err != nil {
		// Search ordering degrades; the write still goes through.
		s.log.Warn("Failed to compute recipe embedding", zap.Error(err))
		return
	}
	recipe.Embedding = &vec
}

// CreateRecipe creates a new recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	if recipe.Macros.IsZero() {
		recipe.Macros = nil
	}
	recipe.RecipeDetails = recipe.RecipeDetails.Normalized()
	s.embed(recipe)

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, apperror.Internal("Failed to save recipe", fmt.Errorf("failed to create recipe: %w", err))
	}
	s.metrics.RecipeWrite("create")
	s.log.Info("Recipe created", zap.String("id", recipe.ID.String()), zap.String("meal_name", recipe.MealName))
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).Preload("Macros").First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "failed to get recipe")
	}
	return &recipe, nil
}

// UpdateRecipe replaces the recipe's fields and its macros in one transaction.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, in *model.Recipe) (*model.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Recipe
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "failed to load recipe")
		}

		existing.MealName = in.MealName
		existing.IngredientsUsed = in.IngredientsUsed
		existing.RecipeDetails = in.RecipeDetails.Normalized()
		existing.PrepTimeMinutes = in.PrepTimeMinutes
		if in.ImageURL != "" {
			existing.ImageURL = in.ImageURL
		}
		s.embed(&existing)

		if err := tx.Omit(clause.Associations).Save(&existing).Error; err != nil {
			return apperror.Internal("Failed to save recipe", fmt.Errorf("failed to update recipe: %w", err))
		}
		return replaceMacros(tx, id, in.Macros)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecipeWrite("update")
	s.log.Info("Recipe updated", zap.String("id", id.String()))
	return s.GetRecipe(ctx, id)
}

func replaceMacros(tx *gorm.DB, recipeID uuid.UUID, in *model.Macros) error {
	if in.IsZero() {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.Macros{}).Error; err != nil {
			return apperror.Internal("Failed to save recipe", fmt.Errorf("failed to remove macros: %w", err))
		}
		return nil
	}

	var current model.Macros
	err := tx.Where("recipe_id = ?", recipeID).First(&current).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		current = model.Macros{RecipeID: recipeID}
	case err != nil:
		return apperror.Internal("Failed to save recipe", fmt.Errorf("failed to load macros: %w", err))
	}

	current.Calories = in.Calories
	current.Protein = in.Protein
	current.Carbs = in.Carbs
	current.Fat = in.Fat
	if err := tx.Save(&current).Error; err != nil {
		return apperror.Internal("Failed to save recipe", fmt.Errorf("failed to save macros: %w", err))
	}
	return nil
}

// DeleteRecipe soft-deletes a recipe and removes its macros.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Recipe{}, "id = ?", id)
		if result.Error != nil {
			return apperror.Internal("Failed to delete recipe", fmt.Errorf("failed to delete recipe: %w", result.Error))
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("recipe")
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.Macros{}).Error; err != nil {
			return apperror.Internal("Failed to delete recipe", fmt.Errorf("failed to delete macros: %w", err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecipeWrite("delete")
	s.log.Info("Recipe deleted", zap.String("id", id.String()))
	return nil
}

// ListRecipes returns recipes, newest first. A non-empty query filters by
// meal name and ingredients; on postgres matches are ordered by embedding
// distance to the query.
func (s *RecipeService) ListRecipes(ctx context.Context, query string) ([]*model.Recipe, error) {
	var recipes []*model.Recipe

	dbQuery := s.db.WithContext(ctx).Preload("Macros").Limit(listLimit)

	query = strings.TrimSpace(query)
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		if s.vectorSearch() {
			dbQuery = dbQuery.Where("LOWER(meal_name) LIKE ? OR LOWER(ingredients_used::text) LIKE ?", like, like)
			vec, err := s.embeddingService.GenerateEmbedding(query)
			if err == nil {
				dbQuery = dbQuery.Order(clause.OrderBy{Expression: clause.Expr{
					SQL:  "embedding <-> ?",
					Vars: []interface{}{vec},
				}})
			} else {
				s.log.Warn("Failed to compute query embedding", zap.Error(err))
			}
		} else {
			dbQuery = dbQuery.Where("LOWER(meal_name) LIKE ? OR LOWER(ingredients_used) LIKE ?", like, like)
		}
	}

	if err := dbQuery.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, apperror.Internal("Failed to list recipes", fmt.Errorf("failed to list recipes: %w", err))
	}
	return recipes, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("recipe")
	}
	return apperror.Internal("", fmt.Errorf("%s: %w", msg, err))
}
