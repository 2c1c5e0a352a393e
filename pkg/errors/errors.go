package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"
	CodeTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeRateLimited  = "RATE_LIMITED"
	CodeExternal     = "EXTERNAL_SERVICE_FAILURE"
)

// AppError is the error every service returns to its handlers. HTTPStatus
// decides the response status, Details is rendered as-is.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func NotFound(resource string) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, resource+" not found")
}

func NotFoundWithID(resource, id string) *AppError {
	err := NotFound(resource)
	err.Details = map[string]any{"resource": resource, "id": id}
	return err
}

func Validation(message string, details map[string]any) *AppError {
	err := newError(CodeValidation, http.StatusUnprocessableEntity, message)
	err.Details = details
	return err
}

// ValidationFields builds a validation error whose details map every
// offending field to its message.
func ValidationFields(message string, fields map[string]string) *AppError {
	details := make(map[string]any, len(fields))
	for field, msg := range fields {
		details[field] = msg
	}
	return Validation(message, details)
}

func InvalidInput(message string) *AppError {
	return newError(CodeInvalidInput, http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, message)
}

func Conflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message)
}

func Timeout(message string) *AppError {
	return newError(CodeTimeout, http.StatusGatewayTimeout, message)
}

func TooLarge(limit int64) *AppError {
	err := newError(CodeTooLarge, http.StatusRequestEntityTooLarge, "Request body too large")
	err.Details = map[string]any{"limit_bytes": limit}
	return err
}

func RateLimited() *AppError {
	return newError(CodeRateLimited, http.StatusTooManyRequests, "Rate limit exceeded")
}

func Internal(message string, err error) *AppError {
	appErr := newError(CodeInternal, http.StatusInternalServerError, message)
	appErr.Err = err
	return appErr
}

// External reports a failure of a collaborator outside this service
// (payment provider, lock vendor, storage, mail).
func External(service string, err error) *AppError {
	appErr := newError(CodeExternal, http.StatusBadGateway, service+" request failed")
	appErr.Details = map[string]any{"service": service}
	appErr.Err = err
	return appErr
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
