package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateUsername  = "DUPLICATE_USERNAME"
	CodeSelfFollowRejected = "SELF_FOLLOW_REJECTED"
	CodeTargetNotFound     = "TARGET_NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
	// Fields maps form field names to their validation messages.
	Fields map[string]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField attaches a field-level message and returns the same error.
func (e *AppError) WithField(field, message string) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// NewNotFoundError reports a missing resource looked up by key.
func NewNotFoundError(resource string, key interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, key),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldError is a validation error scoped to one form field.
func NewFieldError(field, message string) *AppError {
	return NewValidationError(message).WithField(field, message)
}

func NewDuplicateUsernameError() *AppError {
	return &AppError{
		Code:    CodeDuplicateUsername,
		Message: "Please use a different username.",
		Fields:  map[string]string{"username": "Please use a different username."},
	}
}

func NewSelfFollowError(action string) *AppError {
	return &AppError{
		Code:    CodeSelfFollowRejected,
		Message: fmt.Sprintf("You cannot %s yourself!", action),
	}
}

func NewTargetNotFoundError(username string) *AppError {
	return &AppError{
		Code:    CodeTargetNotFound,
		Message: fmt.Sprintf("User %s not found.", username),
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Fields: appErr.Fields,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
