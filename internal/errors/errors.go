package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrItemNotFound is returned when an item does not exist.
	ErrItemNotFound = errors.New("item not found")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrStudentIDTaken is returned when a student ID belongs to another user.
	ErrStudentIDTaken = errors.New("student ID already registered to another user")
	// ErrNotOwner is returned when a caller mutates an item they do not own.
	ErrNotOwner = errors.New("not authorized to modify this item")
	// ErrAdminRequired is returned when an operation needs admin privileges.
	ErrAdminRequired = errors.New("admin privileges required")
	// ErrSelfDeactivation is returned when an admin toggles their own status.
	ErrSelfDeactivation = errors.New("cannot change your own status")
	// ErrUserInactive is returned when a deactivated user authenticates.
	ErrUserInactive = errors.New("user account is deactivated")
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field violation of a request. Validation
// fails with the complete list, not just the first offending field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return "validation errors"
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Duplicate-key conditions
// surface as 400 (the frontend treats them as form errors), ownership failures
// as 403, inactive or unknown users during auth as 401.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrItemNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ITEM_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrStudentIDTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "STUDENT_ID_TAKEN")
	case errors.Is(err, ErrNotOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_OWNER")
	case errors.Is(err, ErrAdminRequired):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ADMIN_REQUIRED")
	case errors.Is(err, ErrSelfDeactivation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SELF_DEACTIVATION")
	case errors.Is(err, ErrUserInactive):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "USER_INACTIVE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
