package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/api"
	"github.com/pageza/recipe-manager/backend/internal/metrics"
	"github.com/pageza/recipe-manager/backend/internal/mocks"
	"github.com/pageza/recipe-manager/backend/internal/service"
	"github.com/pageza/recipe-manager/backend/internal/testhelpers"
)

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	db := testhelpers.SetupSQLite(t)
	dir := t.TempDir()

	cfg := &config.Config{
		Environment: config.Test,
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Upload: config.UploadConfig{
			MaxImageBytes: 5 << 20,
			MaxDimension:  1024,
			Storage:       "local",
			LocalDir:      dir,
			PublicBaseURL: "/uploads",
		},
	}
	store, err := service.NewLocalImageStore(dir, cfg.Upload.PublicBaseURL, log)
	require.NoError(t, err)

	m := metrics.New()
	r := SetupRouter(cfg, api.Handlers{
		Recipes:  api.NewRecipeHandler(service.NewRecipeService(db.DB, service.LocalEmbedder{}, m, log), store, cfg.Upload, m, log),
		Generate: api.NewGenerateHandler(new(mocks.MockGenerationService), nil),
		Health:   api.NewHealthHandler(db, log),
		Metrics:  m,
	}, log)

	t.Run("should tag responses with a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("should serve stored images", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "recipe-images"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe-images", "a.png"), []byte("png"), 0o644))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/recipe-images/a.png", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "png", w.Body.String())
	})

	t.Run("should render unknown recipes as JSON errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/recipes/6f1c7a52-3f5e-4a43-9b7a-8c2d35b0e6a1", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Recipe not found","code":"NOT_FOUND"}`, w.Body.String())
	})

	t.Run("should answer CORS preflights", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/recipes/create-meal", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
