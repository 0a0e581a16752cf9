package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type requestValidator struct {
	validate *validator.Validate
}

// NewValidator adapts go-playground/validator to echo. Struct fields such as
// time.Time honour the required tag.
func NewValidator() echo.Validator {
	return &requestValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
