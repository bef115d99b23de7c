package builder

import (
	"context"
	"errors"
	"sync"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/ingredient"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// ErrStale is returned to a Generate call that a newer call superseded.
var ErrStale = errors.New("builder: superseded by a newer generation request")

// GenerateAPI is the part of the API client the generator needs.
type GenerateAPI interface {
	GenerateMeal(ctx context.Context, ingredients []string) (*types.GeneratedRecipe, error)
}

// Generator runs generation requests from a comma-separated ingredient
// input. Only the most recent request may set the result; starting a new one
// cancels the previous.
type Generator struct {
	api GenerateAPI

	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
	result *types.GeneratedRecipe
	err    error
}

func NewGenerator(api GenerateAPI) *Generator {
	return &Generator{api: api}
}

// Generate splits and validates rawInput, then requests a recipe. Invalid
// input fails without a request and leaves the last result alone.
func (g *Generator) Generate(ctx context.Context, rawInput string) (*types.GeneratedRecipe, error) {
	list, err := ingredient.ValidateList(ingredient.Split(rawInput))
	if err != nil {
		return nil, apperror.Validation("", map[string]string{FieldIngredients: listMessage(err)}).WithCause(err)
	}

	g.mu.Lock()
	g.token++
	token := g.token
	if g.cancel != nil {
		g.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.mu.Unlock()

	recipe, err := g.api.GenerateMeal(reqCtx, list)

	g.mu.Lock()
	defer g.mu.Unlock()
	cancel()
	if token != g.token {
		return nil, ErrStale
	}
	g.cancel = nil
	if err != nil {
		g.err = err
		return nil, err
	}
	g.result, g.err = recipe, nil
	return recipe, nil
}

// InFlight reports whether a request is outstanding.
func (g *Generator) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil
}

// Result returns the latest applied recipe and the latest error.
func (g *Generator) Result() (*types.GeneratedRecipe, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result, g.err
}

// Close cancels the outstanding request, if any. Its result is dropped.
func (g *Generator) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token++
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func listMessage(err error) string {
	if errors.Is(err, ingredient.ErrEmptyList) {
		return msgIngredientRequired
	}
	return ingredientMessage(err)
}
