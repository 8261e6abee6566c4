package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. They select the HTTP status and are never
// written to the response body.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeExists       = "ALREADY_EXISTS"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// InternalErrorMessage is the only message clients see for unexpected failures.
const InternalErrorMessage = "Internal server error"

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
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

// NewNotFoundError reports a missing resource. A nil id yields "<resource> not found".
func NewNotFoundError(resource string, id interface{}) *AppError {
	msg := resource + " not found"
	if id != nil {
		msg = fmt.Sprintf("%s with ID %v not found", resource, id)
	}
	return &AppError{
		Code:    CodeNotFound,
		Message: msg,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewConflictError reports a state conflict such as a duplicate pending
// request or a request that is no longer pending.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewAlreadyExistsError reports a unique identity collision, such as a taken
// username or email.
func NewAlreadyExistsError(message string) *AppError {
	return &AppError{
		Code:    CodeExists,
		Message: message,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Code:    CodeRateLimited,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: InternalErrorMessage,
		Err:     err,
	}
}

// StatusFor maps an error to its HTTP status. Conflicts surface as 400 to
// match the public contract of the trade endpoints.
func StatusFor(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodeConflict:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeExists:
		return fiber.StatusConflict
	case CodeRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError writes {"message": ...}. Internal errors and plain errors
// never expose their underlying cause.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{Message: InternalErrorMessage}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		response.Message = appErr.Message
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError writes err using the status derived from its code.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusFor(err), err)
}
