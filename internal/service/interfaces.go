package service

import (
	"context"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/recipe-manager/backend/internal/model"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	// UpdateRecipe replaces every field of the stored recipe. An empty
	// ImageURL keeps the current image.
	UpdateRecipe(ctx context.Context, id uuid.UUID, recipe *model.Recipe) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	ListRecipes(ctx context.Context, query string) ([]*model.Recipe, error)
}

// IGenerationService turns an ingredient list into a generated recipe.
type IGenerationService interface {
	Generate(ctx context.Context, ingredients []string) (*types.GeneratedRecipe, error)
}

// ChatProvider sends one system and user prompt pair to a language model and
// returns the raw text of its answer. Failures are *apperror.Error values.
type ChatProvider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ImageGenerator produces a stored image for a recipe and returns its URL.
type ImageGenerator interface {
	GenerateRecipeImage(ctx context.Context, mealName string, ingredients []string) (string, error)
}

// ImageStore persists recipe images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the image behind a URL returned by Upload. URLs the
	// store does not own are ignored.
	Delete(ctx context.Context, url string) error
}

// RecipeCache stores generated recipes by ingredient key.
type RecipeCache interface {
	Get(ctx context.Context, key string) (*types.GeneratedRecipe, bool, error)
	Set(ctx context.Context, key string, recipe *types.GeneratedRecipe) error
}

// EmbeddingServiceInterface computes the search vector of a text.
type EmbeddingServiceInterface interface {
	GenerateEmbedding(text string) (pgvector.Vector, error)
}
