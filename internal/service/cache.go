package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipe-manager/backend/internal/ingredient"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

const generatedKeyPrefix = "recipe:generated:"

// GeneratedRecipeKey is the cache key of an ordered ingredient list. Case and
// surrounding whitespace do not change the key.
func GeneratedRecipeKey(ingredients []string) string {
	sum := sha256.Sum256([]byte(ingredient.Key(ingredients)))
	return generatedKeyPrefix + hex.EncodeToString(sum[:])
}

// RedisRecipeCache keeps generated recipes in Redis as JSON.
type RedisRecipeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRecipeCache(client *redis.Client, ttl time.Duration) *RedisRecipeCache {
	return &RedisRecipeCache{client: client, ttl: ttl}
}

func (c *RedisRecipeCache) Get(ctx context.Context, key string) (*types.GeneratedRecipe, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached recipe: %w", err)
	}

	var recipe types.GeneratedRecipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached recipe: %w", err)
	}
	recipe.RecipeDetails = recipe.RecipeDetails.Normalized()
	return &recipe, true, nil
}

func (c *RedisRecipeCache) Set(ctx context.Context, key string, recipe *types.GeneratedRecipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("failed to encode recipe: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache recipe: %w", err)
	}
	return nil
}
