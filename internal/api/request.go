package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/ingredient"
	"github.com/pageza/recipe-manager/backend/internal/middleware"
	"github.com/pageza/recipe-manager/backend/internal/model"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

const (
	requestPart = "request"
	imagePart   = "image"
)

// readRecipeRequest reads a create or update body. Multipart bodies carry the
// JSON payload in the "request" part (a form value or a file part) and an
// optional "image" file; plain JSON bodies carry the payload alone.
func readRecipeRequest(c *gin.Context, maxImageBytes int64) (*types.RecipeRequest, *types.ImageUpload, error) {
	var (
		payload []byte
		upload  *types.ImageUpload
		err     error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		payload, upload, err = readMultipart(c, maxImageBytes)
	} else {
		payload, err = io.ReadAll(c.Request.Body)
		if middleware.IsBodyTooLarge(err) {
			err = apperror.PayloadTooLarge(maxImageBytes)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	req, err := decodeRecipeRequest(payload)
	if err != nil {
		return nil, nil, err
	}
	return req, upload, nil
}

func readMultipart(c *gin.Context, maxImageBytes int64) ([]byte, *types.ImageUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			return nil, nil, apperror.PayloadTooLarge(maxImageBytes)
		}
		return nil, nil, apperror.Validation("Invalid multipart request", nil).WithCause(err)
	}

	var payload []byte
	if values := form.Value[requestPart]; len(values) > 0 {
		payload = []byte(values[0])
	} else if files := form.File[requestPart]; len(files) > 0 {
		payload, err = readPart(files[0])
		if err != nil {
			return nil, nil, apperror.Validation("Invalid multipart request", nil).WithCause(err)
		}
	} else {
		return nil, nil, apperror.Validation("", map[string]string{requestPart: "Recipe data is required"})
	}

	files := form.File[imagePart]
	if len(files) == 0 {
		return payload, nil, nil
	}
	fh := files[0]
	if fh.Size > maxImageBytes {
		return nil, nil, apperror.PayloadTooLarge(maxImageBytes)
	}
	data, err := readPart(fh)
	if err != nil {
		return nil, nil, apperror.Validation("Invalid multipart request", nil).WithCause(err)
	}
	if len(data) == 0 {
		return payload, nil, nil
	}
	return payload, &types.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func decodeRecipeRequest(payload []byte) (*types.RecipeRequest, error) {
	var req types.RecipeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, apperror.Validation("Invalid recipe data", nil).WithCause(err)
	}

	req.MealName = strings.TrimSpace(req.MealName)
	fields := map[string]string{}

	if err := binding.Validator.ValidateStruct(&req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, apperror.Validation("", nil).WithCause(err)
		}
		for _, fe := range verrs {
			name := jsonFieldName(fe.Field())
			if _, seen := fields[name]; !seen {
				fields[name] = fieldMessage(fe)
			}
		}
	}

	if _, ok := fields["ingredientsUsed"]; !ok {
		list, err := ingredient.ValidateList(req.IngredientsUsed)
		if err != nil {
			fields["ingredientsUsed"] = ingredientMessage(err)
		} else {
			req.IngredientsUsed = list
		}
	}

	if strings.TrimSpace(req.RecipeDetails.InstructionsText()) == "" {
		fields["recipeDetails"] = "Instructions are required"
	}

	if len(fields) > 0 {
		return nil, apperror.Validation("", fields)
	}
	return &req, nil
}

// toModel resolves the request into a recipe ready to store.
func toModel(req *types.RecipeRequest) *model.Recipe {
	return &model.Recipe{
		MealName:        req.MealName,
		IngredientsUsed: model.JSONBStringArray(req.IngredientsUsed),
		RecipeDetails:   req.RecipeDetails.Resolve(),
		PrepTimeMinutes: req.PrepTimeMinutes,
		Macros:          req.Macros.ToModel(),
	}
}

// jsonFieldName turns "IngredientsUsed[0]" into "ingredientsUsed".
func jsonFieldName(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "MealName":
		if fe.Tag() == "max" {
			return fmt.Sprintf("Meal name must be at most %s characters", fe.Param())
		}
		return "Meal name is required"
	case "PrepTimeMinutes":
		return "Prep time must be a positive number of minutes"
	}
	if strings.HasPrefix(fe.Field(), "IngredientsUsed") {
		return "At least one ingredient is required"
	}
	return fmt.Sprintf("Failed on the %q rule", fe.Tag())
}

func ingredientMessage(err error) string {
	switch {
	case errors.Is(err, ingredient.ErrEmptyList):
		return "At least one ingredient is required"
	case errors.Is(err, ingredient.ErrNumeric):
		return "Ingredients must name a food, not just a quantity"
	default:
		return fmt.Sprintf("Each ingredient must be at least %d characters", ingredient.MinLength)
	}
}

// parseID reads the :id path parameter. Malformed ids cannot name a recipe.
func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("recipe")
	}
	return id, nil
}
