package client

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/api"
	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/middleware"
	"github.com/pageza/recipe-manager/backend/internal/mocks"
	"github.com/pageza/recipe-manager/backend/internal/model"
	"github.com/pageza/recipe-manager/backend/internal/service"
	"github.com/pageza/recipe-manager/backend/internal/testhelpers"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// newAPIServer runs the real recipe routes over sqlite.
func newAPIServer(t *testing.T, generator service.IGenerationService) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	db := testhelpers.SetupSQLite(t)

	upload := config.UploadConfig{MaxImageBytes: 1 << 20, MaxDimension: 512, Storage: "local", PublicBaseURL: "/uploads"}
	store, err := service.NewLocalImageStore(t.TempDir(), upload.PublicBaseURL, log)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	api.RegisterRoutes(r, api.Handlers{
		Recipes:  api.NewRecipeHandler(service.NewRecipeService(db.DB, service.LocalEmbedder{}, nil, log), store, upload, nil, log),
		Generate: api.NewGenerateHandler(generator, nil),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func sampleRequest() *types.RecipeRequest {
	prep := 30
	return &types.RecipeRequest{
		MealName:        "Tomato Basil Pasta",
		IngredientsUsed: []string{"pasta", "tomatoes", "basil"},
		RecipeDetails:   types.TextDetails("1. Boil pasta\n2) Make sauce\nStep 3: Toss"),
		PrepTimeMinutes: &prep,
		Macros:          &types.MacrosPayload{Calories: "610", Protein: "18g"},
	}
}

func TestClient_RecipeRoundTrip(t *testing.T) {
	srv := newAPIServer(t, new(mocks.MockGenerationService))
	c := New(srv.URL, 0, zaptest.NewLogger(t))
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	created, err := c.CreateMeal(ctx, sampleRequest(), &types.ImageUpload{Filename: "pasta.png", Data: buf.Bytes()})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	t.Run("should create with the image and resolved details", func(t *testing.T) {
		assert.NotEmpty(t, created.ImageURL)
		assert.Equal(t, []string{"Boil pasta", "Make sauce", "Toss"}, created.RecipeDetails.Resolve().Instructions)
		require.NotNil(t, created.Macros)
		assert.Equal(t, "18g", created.Macros.Protein.String())
	})

	t.Run("should fetch the recipe", func(t *testing.T) {
		got, err := c.GetRecipe(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.MealName, got.MealName)
		assert.Equal(t, "Boil pasta\nMake sauce\nToss", got.RecipeDetails.InstructionsText())
	})

	t.Run("should update and keep the image", func(t *testing.T) {
		req := sampleRequest()
		req.MealName = "Tomato Basil Penne"
		req.PrepTimeMinutes = nil

		updated, err := c.UpdateRecipe(ctx, created.ID, req, nil)
		require.NoError(t, err)
		assert.Equal(t, "Tomato Basil Penne", updated.MealName)
		assert.Nil(t, updated.PrepTimeMinutes)
		assert.Equal(t, created.ImageURL, updated.ImageURL)
	})

	t.Run("should list recipes", func(t *testing.T) {
		list, err := c.ListRecipes(ctx, "penne")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("should surface server validation fields", func(t *testing.T) {
		req := sampleRequest()
		req.IngredientsUsed = []string{"pasta", "ok"}

		_, err := c.CreateMeal(ctx, req, nil)
		var appErr *apperror.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CategoryBadRequest, appErr.Category)
		assert.Contains(t, appErr.Fields, "ingredientsUsed")
	})

	t.Run("should delete the recipe", func(t *testing.T) {
		require.NoError(t, c.DeleteRecipe(ctx, created.ID))

		_, err := c.GetRecipe(ctx, created.ID)
		var appErr *apperror.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusNotFound, appErr.Status)
		assert.Equal(t, "Recipe not found", appErr.Message)
	})
}

func TestClient_GenerateMeal(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the generated recipe", func(t *testing.T) {
		generator := new(mocks.MockGenerationService)
		generator.On("Generate", mock.Anything, []string{"chicken", "rice"}).Return(&types.GeneratedRecipe{
			MealName:        "Chicken Rice",
			IngredientsUsed: []string{"chicken", "rice"},
			RecipeDetails: model.RecipeDetails{
				NutritionalInformation: model.NutritionalInformation{Calories: "500"},
			},
		}, nil)

		c := New(newAPIServer(t, generator).URL, 0, zaptest.NewLogger(t))
		recipe, err := c.GenerateMeal(ctx, []string{" chicken ", "rice"})
		require.NoError(t, err)
		assert.Equal(t, "Chicken Rice", recipe.MealName)
		assert.Equal(t, "500", recipe.RecipeDetails.NutritionalInformation.Calories)
		assert.Equal(t, "", recipe.RecipeDetails.NutritionalInformation.Fat)
		assert.NotNil(t, recipe.RecipeDetails.EquipmentNeeded)
	})

	t.Run("should reject short ingredients before any request", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		c := New(srv.URL, 0, zaptest.NewLogger(t))
		_, err := c.GenerateMeal(ctx, []string{"a"})
		assert.True(t, apperror.Is(err, apperror.CategoryValidation))
		assert.False(t, called)
	})
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category apperror.Category
		message  string
	}{
		{"bad request", http.StatusBadRequest, `{"error":"nope","code":"BAD_REQUEST"}`, apperror.CategoryBadRequest, apperror.MsgBadRequest},
		{"unauthorized", http.StatusUnauthorized, `{"error":"who"}`, apperror.CategoryAuth, apperror.MsgAuth},
		{"forbidden", http.StatusForbidden, `{"error":"no"}`, apperror.CategoryAuth, apperror.MsgAuth},
		{"too large", http.StatusRequestEntityTooLarge, `{"error":"big"}`, apperror.CategoryPayloadTooLarge, apperror.MsgPayloadTooLarge},
		{"server error", http.StatusInternalServerError, `{"error":"db down"}`, apperror.CategoryServer, apperror.MsgServer},
		{"unavailable", http.StatusServiceUnavailable, `{}`, apperror.CategoryServer, apperror.MsgServer},
		{"other status with message", http.StatusFailedDependency, `{"error":"Rate limit reached"}`, apperror.CategoryUnknown, "Rate limit reached"},
		{"other status without message", http.StatusTeapot, `{}`, apperror.CategoryUnknown, apperror.MsgUnknown},
	}
	for _, tt := range tests {
		t.Run("should map "+tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, 0, zaptest.NewLogger(t))
			_, err := c.GenerateMeal(context.Background(), []string{"chicken"})

			var appErr *apperror.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.category, appErr.Category)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	t.Run("should map a missing server to a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := New(url, 0, zaptest.NewLogger(t))
		_, err := c.GetRecipe(context.Background(), "6f1c7a52-3f5e-4a43-9b7a-8c2d35b0e6a1")
		assert.True(t, apperror.Is(err, apperror.CategoryNetwork))
	})
}
