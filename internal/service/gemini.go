package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/apperror"
)

// GeminiChatProvider generates recipes with Google Gemini.
type GeminiChatProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	log         *zap.Logger
}

func NewGeminiChatProvider(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (*GeminiChatProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiChatProvider{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		log:         log,
	}, nil
}

// Complete runs one generation with the system prompt as system instruction
// and JSON output requested.
func (p *GeminiChatProvider) Complete(ctx context.Context, system, user string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(p.temperature)
	if p.maxTokens > 0 {
		model.SetMaxOutputTokens(p.maxTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", geminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", emptyAnswer("empty response from Gemini")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", emptyAnswer("unexpected response format from Gemini")
	}
	return sb.String(), nil
}

func (p *GeminiChatProvider) Close() error {
	return p.client.Close()
}

func emptyAnswer(msg string) *apperror.Error {
	return badGateway(errors.New(msg))
}

// geminiError maps client errors onto the HTTP status table used for every
// provider. Errors without a status mean no response was received.
func geminiError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return apperror.FromProvider(gErr.Code, gErr.Message).WithCause(err)
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPCode()
		if status <= 0 && apiErr.GRPCStatus() != nil {
			status = grpcToHTTP(apiErr.GRPCStatus().Code())
		}
		if status > 0 {
			msg := ""
			if st := apiErr.GRPCStatus(); st != nil {
				msg = st.Message()
			}
			return apperror.FromProvider(status, msg).WithCause(err)
		}
	}
	return apperror.Network(err)
}

func grpcToHTTP(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable, codes.Internal, codes.Unknown, codes.DataLoss:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded, codes.Canceled:
		return 0
	default:
		return http.StatusInternalServerError
	}
}
