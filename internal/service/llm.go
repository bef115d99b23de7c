package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/apperror"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is an OpenAI-compatible chat completion request.
type ChatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
}

// ChatResponse is the subset of the completion response that is read.
type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// ProviderErrorBody is the error envelope of OpenAI-compatible APIs.
type ProviderErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIChatProvider talks to any OpenAI-compatible chat completions API.
type OpenAIChatProvider struct {
	client      *resty.Client
	model       string
	temperature float64
	maxTokens   int
	log         *zap.Logger
}

func NewOpenAIChatProvider(cfg config.AIConfig, log *zap.Logger) *OpenAIChatProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &OpenAIChatProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log,
	}
}

// Complete sends the prompts and returns the first choice's content.
func (p *OpenAIChatProvider) Complete(ctx context.Context, system, user string) (string, error) {
	req := ChatRequest{
		Model: p.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    p.temperature,
		MaxTokens:      p.maxTokens,
	}

	var (
		result  ChatResponse
		failure ProviderErrorBody
	)
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil && (resp == nil || resp.RawResponse == nil) {
		return "", apperror.Network(fmt.Errorf("failed to send request to chat provider: %w", err))
	}

	if !resp.IsSuccess() {
		p.log.Debug("Chat provider returned error",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", failure.Error.Message),
		)
		return "", apperror.FromProvider(resp.StatusCode(), failure.Error.Message)
	}

	if err != nil {
		return "", badGateway(fmt.Errorf("failed to parse chat provider response: %w", err))
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", badGateway(fmt.Errorf("no choices in chat provider response"))
	}
	return result.Choices[0].Message.Content, nil
}

// badGateway reports a provider that answered 2xx with an unusable body.
func badGateway(cause error) *apperror.Error {
	return &apperror.Error{
		Category: apperror.CategoryServer,
		Message:  apperror.MsgServer,
		Status:   http.StatusBadGateway,
		Cause:    cause,
	}
}
