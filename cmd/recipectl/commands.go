package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/builder"
	"github.com/pageza/recipe-manager/backend/internal/ingredient"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

var errUsage = errors.New("usage")

// RecipeAPI is everything recipectl calls on the API client.
type RecipeAPI interface {
	builder.RecipeAPI
	builder.GenerateAPI
	ListRecipes(ctx context.Context, query string) ([]types.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, id string) error
}

// CLI runs one recipectl command against API and writes JSON to Out.
type CLI struct {
	API RecipeAPI
	Out io.Writer
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "generate":
		return c.generate(ctx, rest)
	case "create":
		return c.create(ctx, rest)
	case "update":
		return c.update(ctx, rest)
	case "get":
		return c.get(ctx, rest)
	case "list":
		return c.list(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	default:
		return errUsage
	}
}

// draftFlags are the editable fields shared by create and update. Unset
// flags leave the loaded draft alone.
type draftFlags struct {
	name         string
	ingredients  string
	instructions string
	prep         int
	image        string
	set          map[string]bool
}

func (d *draftFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.name, "name", "", "Meal name")
	fs.StringVar(&d.ingredients, "ingredients", "", "Comma-separated ingredients")
	fs.StringVar(&d.instructions, "instructions", "", "Instructions text")
	fs.IntVar(&d.prep, "prep", 0, "Prep time in minutes (0 clears it)")
	fs.StringVar(&d.image, "image", "", "Path to a PNG, JPEG, GIF or WebP image")
}

func (d *draftFlags) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	d.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { d.set[f.Name] = true })
	return nil
}

// apply writes the given flags into the form. Ingredient problems are
// collected per field instead of stopping at the first.
func (d *draftFlags) apply(form *builder.Form) error {
	if d.set["name"] {
		form.SetName(d.name)
	}
	if d.set["instructions"] {
		form.SetInstructions(d.instructions)
	}
	if d.set["prep"] {
		if d.prep > 0 {
			prep := d.prep
			form.SetPrepTime(&prep)
		} else {
			form.SetPrepTime(nil)
		}
	}
	if d.set["ingredients"] {
		for range form.Draft().Ingredients {
			form.RemoveIngredient(0)
		}
		for _, item := range ingredient.Split(d.ingredients) {
			if err := form.AddIngredient(item); err != nil {
				return err
			}
		}
	}
	if d.set["image"] {
		img, err := readImage(d.image)
		if err != nil {
			return err
		}
		form.SetImage(img)
	}
	return nil
}

func (c *CLI) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	var d draftFlags
	d.register(fs)
	if err := d.parse(fs, args); err != nil {
		return err
	}

	form := builder.NewForm(c.API, builder.WithDelays(time.Millisecond, time.Millisecond))
	defer form.Close()
	if err := d.apply(form); err != nil {
		return err
	}
	return c.submit(ctx, form)
}

func (c *CLI) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.String("id", "", "Recipe id")
	var d draftFlags
	d.register(fs)
	if err := d.parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return errUsage
	}

	form, err := builder.LoadForm(ctx, c.API, *id, builder.WithDelays(time.Millisecond, time.Millisecond))
	if err != nil {
		return err
	}
	defer form.Close()
	if err := d.apply(form); err != nil {
		return err
	}
	return c.submit(ctx, form)
}

func (c *CLI) submit(ctx context.Context, form *builder.Form) error {
	resp, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	return c.print(resp)
}

func (c *CLI) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	raw := fs.String("ingredients", "", "Comma-separated ingredients")
	save := fs.Bool("save", false, "Store the generated recipe")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	gen := builder.NewGenerator(c.API)
	defer gen.Close()
	recipe, err := gen.Generate(ctx, *raw)
	if err != nil {
		return err
	}
	if !*save {
		return c.print(recipe)
	}

	form := builder.NewForm(c.API, builder.WithDelays(time.Millisecond, time.Millisecond))
	defer form.Close()
	form.ApplyGenerated(recipe)
	return c.submit(ctx, form)
}

func (c *CLI) get(ctx context.Context, args []string) error {
	id, err := parseID("get", args)
	if err != nil {
		return err
	}
	recipe, err := c.API.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	return c.print(recipe)
}

func (c *CLI) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	q := fs.String("q", "", "Search text")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	recipes, err := c.API.ListRecipes(ctx, *q)
	if err != nil {
		return err
	}
	return c.print(types.RecipeList{Recipes: recipes})
}

func (c *CLI) delete(ctx context.Context, args []string) error {
	id, err := parseID("delete", args)
	if err != nil {
		return err
	}
	if err := c.API.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Out, "deleted %s\n", id)
	return err
}

func (c *CLI) print(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	id := fs.String("id", "", "Recipe id")
	if err := fs.Parse(args); err != nil || *id == "" {
		return "", errUsage
	}
	return *id, nil
}

func readImage(path string) (*types.ImageUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return &types.ImageUpload{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// describe renders err with its field errors, one per line, sorted by field.
func describe(err error) string {
	msg := builder.UserMessage(err)
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 {
		if appErr == nil {
			return err.Error()
		}
		return msg
	}

	fields := make([]string, 0, len(appErr.Fields))
	for field := range appErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	if appErr.Message != "" {
		b.WriteString(msg)
	} else {
		b.WriteString("invalid input")
	}
	for _, field := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, appErr.Fields[field])
	}
	return b.String()
}
