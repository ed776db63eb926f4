// Package validator adapts the request struct validator to Echo's interface.
package validator

import (
	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	domainerrors "watchtower/internal/domain/errors"
)

type requestValidator struct {
	validate *playground.Validate
}

// New builds the validator used by the Echo server.
func New() echo.Validator {
	return &requestValidator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate checks struct tags and converts failures into a validation error
// carrying a field-to-rule map as details.
func (v *requestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}

	return domainerrors.ErrValidationFailed.WithDetails(details)
}
