package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError and returned to API clients.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInternal          = "INTERNAL_ERROR"
)

// statusByCode is the HTTP status of each code. Unlisted codes are 500.
var statusByCode = map[string]int{
	CodeNotFound:          fiber.StatusNotFound,
	CodeValidation:        fiber.StatusBadRequest,
	CodeUnauthorized:      fiber.StatusUnauthorized,
	CodeForbidden:         fiber.StatusForbidden,
	CodeInvalidTransition: fiber.StatusConflict,
}

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError is a marketplace rule violation or failure with a client-facing code.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing record, e.g. "Listing with ID 7 not found".
func NewNotFoundError(resource string, id interface{}) *AppError {
	return newAppError(CodeNotFound, "%s with ID %v not found", resource, id)
}

func NewValidationError(message string) *AppError {
	return newAppError(CodeValidation, "%s", message)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(CodeUnauthorized, "%s", message)
}

func NewForbiddenError(message string) *AppError {
	return newAppError(CodeForbidden, "%s", message)
}

// NewInvalidTransitionError reports a status change the lifecycle forbids.
func NewInvalidTransitionError(resource string, from, to interface{}) *AppError {
	return newAppError(CodeInvalidTransition, "%s cannot move from %v to %v", resource, from, to)
}

// NewInternalError wraps err behind a generic message; err is never sent to clients.
func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// ErrorCode returns the AppError code carried anywhere in err's chain, or "".
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	if status, ok := statusByCode[ErrorCode(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// RespondWithError writes err as an ErrorResponse with status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	resp := ErrorResponse{Error: err.Error()}

	var appErr *AppError
	if errors.As(err, &appErr) {
		resp = ErrorResponse{Error: appErr.Message, Code: appErr.Code}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			resp.Details = appErr.Err.Error()
		}
	}
	return c.Status(status).JSON(resp)
}

// RespondWithAppError responds using the status derived from err.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, HTTPStatus(err), err)
}
