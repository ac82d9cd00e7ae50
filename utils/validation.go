package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is the singleton validator instance
	validate *validator.Validate
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so field errors match what the client sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// Validator exposes the shared instance for callers with their own structs.
func Validator() *validator.Validate {
	return validate
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidateVar checks a single value, e.g. a path or query parameter, and
// reports failures as a constraint violation keyed by path.
func ValidateVar(path string, value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			violations := make(map[string]string, len(validationErrors))
			for _, fe := range validationErrors {
				violations[path] = describe(path, fe.Tag(), fe.Param())
			}
			return &ConstraintViolationError{Violations: violations}
		}
		return err
	}
	return nil
}

// ValidationError wraps body validation errors with per-field messages.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// ConstraintViolationError reports parameter-level constraint failures.
type ConstraintViolationError struct {
	Violations map[string]string
}

func (e *ConstraintViolationError) Error() string {
	return "Constraint validation failed"
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string)
	for _, err := range errs {
		fields[err.Field()] = describe(err.Field(), err.Tag(), err.Param())
	}

	return &ValidationError{
		Message: "Validation failed",
		Fields:  fields,
	}
}

func describe(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "jwt":
		return fmt.Sprintf("%s must be a JWT", field)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	default:
		return fmt.Sprintf("%s validation failed on '%s' tag", field, tag)
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// IsConstraintViolation checks if an error is a ConstraintViolationError
func IsConstraintViolation(err error) bool {
	var cv *ConstraintViolationError
	return errors.As(err, &cv)
}

// GetViolations extracts violations from a ConstraintViolationError
func GetViolations(err error) map[string]string {
	var cv *ConstraintViolationError
	if errors.As(err, &cv) {
		return cv.Violations
	}
	return nil
}
