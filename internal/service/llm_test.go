package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/apperror"
)

func testAIConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		Provider:    "openai",
		APIKey:      "sk-test",
		BaseURL:     baseURL,
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   1500,
		Timeout:     5 * time.Second,
		ImageModel:  "dall-e-3",
		ImageSize:   "1024x1024",
	}
}

func TestOpenAIChatProvider_Complete(t *testing.T) {
	t.Run("should send prompts and return the first choice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var req ChatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-4o-mini", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "be a chef", req.Messages[0].Content)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "json_object", req.ResponseFormat["type"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"mealName\":\"Soup\"}"}}]}`))
		}))
		defer server.Close()

		p := NewOpenAIChatProvider(testAIConfig(server.URL), zaptest.NewLogger(t))
		content, err := p.Complete(context.Background(), "be a chef", "rice, beans")
		require.NoError(t, err)
		assert.Equal(t, `{"mealName":"Soup"}`, content)
	})

	tests := []struct {
		name       string
		status     int
		body       string
		category   apperror.Category
		message    string
		respStatus int
	}{
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad"}}`, apperror.CategoryBadRequest, apperror.MsgBadRequest, http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`, apperror.CategoryAuth, apperror.MsgAuth, http.StatusUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, apperror.CategoryAuth, apperror.MsgAuth, http.StatusForbidden},
		{"too large", http.StatusRequestEntityTooLarge, `{}`, apperror.CategoryPayloadTooLarge, apperror.MsgPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"server error", http.StatusBadGateway, `{"error":{"message":"upstream"}}`, apperror.CategoryServer, apperror.MsgServer, http.StatusServiceUnavailable},
		{"other status keeps provider message", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`, apperror.CategoryUnknown, "Rate limit reached", http.StatusFailedDependency},
		{"other status without message", http.StatusConflict, `not json`, apperror.CategoryUnknown, apperror.MsgUnknown, http.StatusFailedDependency},
	}
	for _, tt := range tests {
		t.Run("should map "+tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.HasPrefix(tt.body, "{") {
					w.Header().Set("Content-Type", "application/json")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewOpenAIChatProvider(testAIConfig(server.URL), zaptest.NewLogger(t))
			_, err := p.Complete(context.Background(), "s", "u")

			var appErr *apperror.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.category, appErr.Category)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Equal(t, tt.respStatus, appErr.HTTPStatus())
		})
	}

	t.Run("should report unreachable provider as network error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		p := NewOpenAIChatProvider(testAIConfig(url), zaptest.NewLogger(t))
		_, err := p.Complete(context.Background(), "s", "u")
		assert.True(t, apperror.Is(err, apperror.CategoryNetwork))
	})

	t.Run("should reject empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		p := NewOpenAIChatProvider(testAIConfig(server.URL), zaptest.NewLogger(t))
		_, err := p.Complete(context.Background(), "s", "u")
		assert.True(t, apperror.Is(err, apperror.CategoryServer))
	})
}

func TestGeminiError(t *testing.T) {
	t.Run("should map googleapi errors by status", func(t *testing.T) {
		err := geminiError(&googleapi.Error{Code: http.StatusForbidden, Message: "denied"})
		assert.True(t, apperror.Is(err, apperror.CategoryAuth))
	})

	t.Run("should map grpc statuses", func(t *testing.T) {
		apiErr, ok := apierror.FromError(status.Error(codes.InvalidArgument, "bad prompt"))
		require.True(t, ok)
		assert.True(t, apperror.Is(geminiError(apiErr), apperror.CategoryBadRequest))

		apiErr, ok = apierror.FromError(status.Error(codes.Unavailable, "overloaded"))
		require.True(t, ok)
		assert.True(t, apperror.Is(geminiError(apiErr), apperror.CategoryServer))
	})

	t.Run("should treat other errors as network failures", func(t *testing.T) {
		assert.True(t, apperror.Is(geminiError(context.Canceled), apperror.CategoryNetwork))
	})
}
