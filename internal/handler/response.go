package handler

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "greenmarket/internal/errors"
)

// Envelope is the uniform response wrapper used by every endpoint.
type Envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// bindAndValidate decodes the request body and runs struct validation,
// translating validator output into the per-field error list of the envelope.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "body",
			Message: "invalid request body",
		})
	}
	return validate(c, req)
}

func validate(c echo.Context, req interface{}) error {
	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			fields := make([]apperrors.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, apperrors.FieldError{
					Field:   fe.Field(),
					Message: fieldMessage(fe),
				})
			}
			return apperrors.NewValidationError(fields...)
		}
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "body",
			Message: err.Error(),
		})
	}
	return nil
}

func invalidIDError(name string) error {
	return apperrors.NewValidationError(apperrors.FieldError{
		Field:   name,
		Message: name + " must be a positive integer",
	})
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a well-formed URL", fe.Field())
	case "e164":
		return fmt.Sprintf("%s must be a valid phone number", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
