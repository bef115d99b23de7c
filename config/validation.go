package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a Config.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "\n")
}

var validate = validator.New()

// ValidateConfig checks struct constraints and the requirements of the
// environment the config was loaded for.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
				Message: describe(fe),
			})
		}
	}

	if cfg.Database.Driver == "postgres" && cfg.Database.URL == "" && cfg.Database.Host == "" {
		errs = append(errs, ValidationError{Field: "Database.Host", Message: "host or url is required for postgres"})
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		errs = append(errs, ValidationError{Field: "Database.Path", Message: "path is required for sqlite"})
	}
	if cfg.Upload.Storage == "s3" && cfg.Upload.S3Bucket == "" {
		errs = append(errs, ValidationError{Field: "Upload.S3Bucket", Message: "bucket is required for s3 storage"})
	}
	if cfg.Redis.Enabled && cfg.Redis.URL == "" && cfg.Redis.Host == "" {
		errs = append(errs, ValidationError{Field: "Redis.Host", Message: "host or url is required when redis is enabled"})
	}

	if cfg.Environment == Production {
		if cfg.AI.APIKey == "" {
			errs = append(errs, ValidationError{Field: "AI.APIKey", Message: "ai_api_key secret is required"})
		}
		if cfg.Database.Driver == "postgres" && cfg.Database.URL == "" && cfg.Database.Password == "" {
			errs = append(errs, ValidationError{Field: "Database.Password", Message: "db_password secret is required"})
		}
		if cfg.Database.Driver != "postgres" {
			errs = append(errs, ValidationError{Field: "Database.Driver", Message: "production requires postgres"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "numeric":
		return "must be numeric"
	case "url":
		return "must be a valid URL"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
