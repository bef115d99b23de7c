// Package client is a typed client for the recipe API. Every failure it
// returns is an *apperror.Error with exactly one category.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/ingredient"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// DefaultTimeout covers a generation round trip including image creation.
const DefaultTimeout = 60 * time.Second

type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// New returns a client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json").
			SetTimeout(timeout),
		log: log,
	}
}

// CreateMeal posts a new recipe with its optional image.
func (c *Client) CreateMeal(ctx context.Context, req *types.RecipeRequest, image *types.ImageUpload) (*types.RecipeResponse, error) {
	var out types.RecipeResponse
	if err := c.sendRecipe(ctx, http.MethodPost, "/v1/recipes/create-meal", req, image, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecipe replaces the recipe with the given id.
func (c *Client) UpdateRecipe(ctx context.Context, id string, req *types.RecipeRequest, image *types.ImageUpload) (*types.RecipeResponse, error) {
	var out types.RecipeResponse
	if err := c.sendRecipe(ctx, http.MethodPut, "/v1/recipes/"+id, req, image, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRecipe(ctx context.Context, id string) (*types.RecipeResponse, error) {
	var out types.RecipeResponse
	var failure types.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&failure).
		Get("/v1/recipes/" + id)
	if err := check(resp, err, &failure); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRecipes returns recipes matching query, or all recent ones.
func (c *Client) ListRecipes(ctx context.Context, query string) ([]types.RecipeResponse, error) {
	var out types.RecipeList
	var failure types.ErrorResponse
	req := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&failure)
	if query != "" {
		req.SetQueryParam("q", query)
	}
	resp, err := req.Get("/v1/recipes")
	if err := check(resp, err, &failure); err != nil {
		return nil, err
	}
	return out.Recipes, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	var failure types.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&failure).
		Delete("/api/recipes/" + id)
	return check(resp, err, &failure)
}

// GenerateMeal asks the gateway for a recipe. Invalid ingredient lists are
// rejected locally without a request.
func (c *Client) GenerateMeal(ctx context.Context, ingredients []string) (*types.GeneratedRecipe, error) {
	list, err := ingredient.ValidateList(ingredients)
	if err != nil {
		return nil, apperror.Validation("", map[string]string{"ingredients": err.Error()}).WithCause(err)
	}

	var out types.GeneratedRecipe
	var failure types.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(types.GenerateMealRequest{Ingredients: list}).
		SetResult(&out).
		SetError(&failure).
		Post("/v1/recipes/generate-meal")
	if err := check(resp, err, &failure); err != nil {
		return nil, err
	}
	out.RecipeDetails = out.RecipeDetails.Normalized()
	if out.IngredientsUsed == nil {
		out.IngredientsUsed = []string{}
	}
	return &out, nil
}

// sendRecipe sends the multipart create/update body: the JSON payload as the
// "request" part and the image, when present, as the "image" file part.
func (c *Client) sendRecipe(ctx context.Context, method, path string, payload *types.RecipeRequest, image *types.ImageUpload, out *types.RecipeResponse) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperror.Validation("Invalid recipe data", nil).WithCause(err)
	}

	var failure types.ErrorResponse
	req := c.http.R().
		SetContext(ctx).
		SetMultipartField("request", "", "application/json", bytes.NewReader(data)).
		SetResult(out).
		SetError(&failure)
	if image != nil && len(image.Data) > 0 {
		name := image.Filename
		if name == "" {
			name = "image"
		}
		contentType := image.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(image.Data)
		}
		req.SetMultipartField("image", name, contentType, bytes.NewReader(image.Data))
	}

	resp, err := req.Execute(method, path)
	if err := check(resp, err, &failure); err != nil {
		c.log.Debug("Recipe request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

// check maps a resty outcome onto the error taxonomy.
func check(resp *resty.Response, err error, failure *types.ErrorResponse) error {
	if err != nil && (resp == nil || resp.RawResponse == nil) {
		return FromTransport(err)
	}
	if !resp.IsSuccess() {
		appErr := apperror.Classify(resp.StatusCode(), failure.Error)
		if len(failure.Fields) > 0 {
			appErr.Fields = failure.Fields
		}
		return appErr
	}
	if err != nil {
		return &apperror.Error{
			Category: apperror.CategoryUnknown,
			Message:  apperror.MsgUnknown,
			Status:   resp.StatusCode(),
			Cause:    fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// FromTransport wraps a failure that produced no HTTP response.
func FromTransport(err error) *apperror.Error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Network(err)
}
