package mocks

import (
	"context"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-manager/backend/internal/types"
)

// MockEmbeddingService returns a fixed vector.
type MockEmbeddingService struct{}

func (m *MockEmbeddingService) GenerateEmbedding(text string) (pgvector.Vector, error) {
	return pgvector.NewVector([]float32{0.1, 0.2, 0.3}), nil
}

// MockChatProvider is a mock language model provider
type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// MockImageGenerator is a mock recipe image generator
type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) GenerateRecipeImage(ctx context.Context, mealName string, ingredients []string) (string, error) {
	args := m.Called(ctx, mealName, ingredients)
	return args.String(0), args.Error(1)
}

// MockImageStore is a mock image store
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockRecipeCache is a mock generation cache
type MockRecipeCache struct {
	mock.Mock
}

func (m *MockRecipeCache) Get(ctx context.Context, key string) (*types.GeneratedRecipe, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*types.GeneratedRecipe), args.Bool(1), args.Error(2)
}

func (m *MockRecipeCache) Set(ctx context.Context, key string, recipe *types.GeneratedRecipe) error {
	args := m.Called(ctx, key, recipe)
	return args.Error(0)
}
