package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/metrics"
)

// maxImagePromptLength keeps prompts under the provider limit.
const maxImagePromptLength = 900

// ImageGenerationRequest represents a request to the images API
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from the images API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// ImageService generates recipe photos with an OpenAI-compatible images API
// and copies them into the image store.
type ImageService struct {
	client       *resty.Client
	download     *resty.Client
	model        string
	size         string
	store        ImageStore
	maxDimension uint
	metrics      *metrics.Metrics
	log          *zap.Logger
}

// NewImageService creates a new ImageService instance
func NewImageService(cfg config.AIConfig, store ImageStore, maxDimension uint, m *metrics.Metrics, log *zap.Logger) *ImageService {
	baseURL := cfg.ImageBaseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetTimeout(cfg.Timeout * 2)

	return &ImageService{
		client:       client,
		download:     resty.New().SetTimeout(cfg.Timeout * 2),
		model:        cfg.ImageModel,
		size:         cfg.ImageSize,
		store:        store,
		maxDimension: maxDimension,
		metrics:      m,
		log:          log,
	}
}

// GenerateRecipeImage generates a photo of the meal and returns its stored
// URL. When storing fails the provider's own URL is returned instead.
func (s *ImageService) GenerateRecipeImage(ctx context.Context, mealName string, ingredients []string) (string, error) {
	prompt := BuildRecipeImagePrompt(mealName, ingredients)
	s.log.Debug("Generating recipe image", zap.String("meal_name", mealName))

	var (
		result  ImageGenerationResponse
		failure ProviderErrorBody
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(ImageGenerationRequest{
			Model:          s.model,
			Prompt:         prompt,
			N:              1,
			Size:           s.size,
			Quality:        "standard",
			ResponseFormat: "url",
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/images/generations")
	if err != nil && (resp == nil || resp.RawResponse == nil) {
		return "", apperror.Network(fmt.Errorf("failed to send image request: %w", err))
	}
	if !resp.IsSuccess() {
		return "", apperror.FromProvider(resp.StatusCode(), failure.Error.Message)
	}
	if err != nil || len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("no image data in API response")
	}

	imageURL := result.Data[0].URL
	stored, err := s.downloadAndStore(ctx, imageURL)
	if err != nil {
		s.metrics.ImageUpload("failed")
		s.log.Warn("Failed to store generated image, returning provider URL", zap.Error(err))
		return imageURL, nil
	}
	s.metrics.ImageUpload("stored")
	return stored, nil
}

func (s *ImageService) downloadAndStore(ctx context.Context, imageURL string) (string, error) {
	resp, err := s.download.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode())
	}

	img, err := ProcessImage(resp.Body(), s.maxDimension)
	if err != nil {
		return "", err
	}
	return s.store.Upload(ctx, img.Key(), img.Data, img.ContentType)
}

// BuildRecipeImagePrompt creates a food photography prompt for a meal.
func BuildRecipeImagePrompt(mealName string, ingredients []string) string {
	var sb strings.Builder
	sb.WriteString("A professional food photography shot of ")
	sb.WriteString(strings.ToLower(strings.TrimSpace(mealName)))
	if len(ingredients) > 0 {
		sb.WriteString(", made with ")
		sb.WriteString(strings.ToLower(strings.Join(ingredients, ", ")))
	}
	sb.WriteString(", natural lighting, shallow depth of field, restaurant quality presentation, appetizing colors")

	prompt := sb.String()
	if len(prompt) <= maxImagePromptLength {
		return prompt
	}
	cut := maxImagePromptLength
	for cut > 0 && !utf8.RuneStart(prompt[cut]) {
		cut--
	}
	return prompt[:cut]
}
