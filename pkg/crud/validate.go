package crud

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oneacrefund/fieldops-console/pkg/constants"
	"github.com/oneacrefund/fieldops-console/pkg/workflow"
)

// ValidateDTO runs struct-tag validation and converts failures into the
// workflow's pre-dispatch validation error.
func ValidateDTO[C any](dto C) error {
	err := constants.Validate.Struct(dto)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			fields[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
		}
	}
	return &workflow.ValidationError{Fields: fields}
}
