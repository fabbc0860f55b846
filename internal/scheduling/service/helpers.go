package service

import (
	"errors"

	"darassa/internal/scheduling/validator"
	apperrors "darassa/pkg/errors"
)

func validationError(message string, err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
