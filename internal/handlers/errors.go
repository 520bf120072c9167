package handlers

import (
	"errors"

	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
)

// persistError maps validator failures to a 422 with one detail per field,
// so the caller can display each message against the right input. Anything
// else becomes an opaque 500.
func persistError(err error, fallback string) error {
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		details := make([]error, len(fieldErrs))
		for i, fe := range fieldErrs {
			details[i] = &huma.ErrorDetail{Location: "body." + fe.Field, Message: fe.Message}
		}
		return huma.Error422UnprocessableEntity("Validation failed", details...)
	}
	return huma.Error500InternalServerError(fallback)
}
