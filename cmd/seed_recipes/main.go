package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/database"
	"github.com/pageza/recipe-manager/backend/internal/logger"
	"github.com/pageza/recipe-manager/backend/internal/model"
	"github.com/pageza/recipe-manager/backend/internal/service"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

var pantry = []string{
	"chicken", "beef", "salmon", "tofu", "eggs", "rice", "pasta", "quinoa",
	"potatoes", "tomatoes", "spinach", "broccoli", "carrots", "onions",
	"garlic", "mushrooms", "bell peppers", "chickpeas", "black beans",
	"lentils", "zucchini", "feta", "parmesan", "coconut milk", "ginger",
	"lemon", "basil", "cilantro", "avocado", "sweet potatoes",
}

func main() {
	count := flag.Int("count", 25, "Number of recipes to generate")
	batchSize := flag.Int("batch", 5, "Recipes per batch")
	perRecipe := flag.Int("ingredients", 4, "Ingredients per recipe")
	delay := flag.Duration("delay", 2*time.Second, "Pause between batches")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zapLog, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database, zapLog)
	if err != nil {
		zapLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.RunMigrations(db.DB, cfg.Server.MigrationsDir, zapLog); err != nil {
		zapLog.Fatal("Failed to run migrations", zap.Error(err))
	}

	var provider service.ChatProvider
	if cfg.AI.Provider == "gemini" {
		provider, err = service.NewGeminiChatProvider(ctx, cfg.AI, zapLog)
		if err != nil {
			zapLog.Fatal("Failed to create Gemini client", zap.Error(err))
		}
	} else {
		provider = service.NewOpenAIChatProvider(cfg.AI, zapLog)
	}

	generator := service.NewGenerationService(provider, zapLog)
	recipes := service.NewRecipeService(db.DB, service.LocalEmbedder{}, nil, zapLog)

	created := 0
	for i := 0; i < *count; i += *batchSize {
		batchEnd := min(i+*batchSize, *count)
		zapLog.Info("Generating batch of recipes", zap.Int("from", i+1), zap.Int("to", batchEnd))

		for j := i; j < batchEnd; j++ {
			ingredients := pickIngredients(*perRecipe)
			generated, err := generator.Generate(ctx, ingredients)
			if err != nil {
				zapLog.Warn("Failed to generate recipe",
					zap.Strings("ingredients", ingredients),
					zap.Error(err),
				)
				continue
			}

			recipe, err := recipes.CreateRecipe(ctx, fromGenerated(generated))
			if err != nil {
				zapLog.Warn("Failed to save recipe", zap.String("meal_name", generated.MealName), zap.Error(err))
				continue
			}
			created++
			zapLog.Info("Created recipe", zap.String("id", recipe.ID.String()), zap.String("meal_name", recipe.MealName))
		}

		if batchEnd < *count {
			select {
			case <-ctx.Done():
				zapLog.Warn("Seeding interrupted", zap.Int("created", created))
				return
			case <-time.After(*delay):
			}
		}
	}

	zapLog.Info("Seeding finished", zap.Int("created", created), zap.Int("requested", *count))
}

func pickIngredients(n int) []string {
	shuffled := append([]string(nil), pantry...)
	gofakeit.ShuffleStrings(shuffled)
	return shuffled[:min(n, len(shuffled))]
}

func fromGenerated(g *types.GeneratedRecipe) *model.Recipe {
	return &model.Recipe{
		MealName:        strings.TrimSpace(g.MealName),
		IngredientsUsed: model.JSONBStringArray(g.IngredientsUsed),
		RecipeDetails:   g.RecipeDetails.Normalized(),
		ImageURL:        g.ImageURL,
	}
}
