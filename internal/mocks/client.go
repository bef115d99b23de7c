package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-manager/backend/internal/types"
)

// MockRecipeAPI mocks the API client as seen by the recipe form and generator
type MockRecipeAPI struct {
	mock.Mock
}

func (m *MockRecipeAPI) CreateMeal(ctx context.Context, req *types.RecipeRequest, image *types.ImageUpload) (*types.RecipeResponse, error) {
	args := m.Called(ctx, req, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeAPI) UpdateRecipe(ctx context.Context, id string, req *types.RecipeRequest, image *types.ImageUpload) (*types.RecipeResponse, error) {
	args := m.Called(ctx, id, req, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeAPI) GetRecipe(ctx context.Context, id string) (*types.RecipeResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeAPI) GenerateMeal(ctx context.Context, ingredients []string) (*types.GeneratedRecipe, error) {
	args := m.Called(ctx, ingredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GeneratedRecipe), args.Error(1)
}

func (m *MockRecipeAPI) ListRecipes(ctx context.Context, query string) ([]types.RecipeResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeAPI) DeleteRecipe(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
