package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code.
// It serializes to the {error, details} shape every endpoint answers with.
type AppError struct {
	Code    string   `json:"-"`
	Message string   `json:"error"`
	Details []string `json:"details"`
	Status  int      `json:"-"`
	Err     error    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code, message string, status int, details []string, err error) *AppError {
	if details == nil {
		details = []string{}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Status:  status,
		Err:     err,
	}
}

// Common error constructors

// Validation creates a 400 error carrying every failed field rule
func Validation(details []string) *AppError {
	return NewAppError("VALIDATION_FAILED", "Validation failed", http.StatusBadRequest, details, nil)
}

// AlreadyExists creates the 400 error returned when the pre-write uniqueness check finds a match
func AlreadyExists(details ...string) *AppError {
	return NewAppError("ALREADY_EXISTS", "Rider already exists", http.StatusBadRequest, details, nil)
}

// Duplicate creates the 400 error for a unique field collision
func Duplicate(err error, details ...string) *AppError {
	return NewAppError("DUPLICATE_FIELD", "Duplicate field", http.StatusBadRequest, details, err)
}

// NotFound creates a 404 error
func NotFound(message string, err error) *AppError {
	return NewAppError("NOT_FOUND", message, http.StatusNotFound, nil, err)
}

// InvalidJSON creates the 400 error for an unparseable body
func InvalidJSON(err error) *AppError {
	return NewAppError("INVALID_JSON", "Invalid JSON", http.StatusBadRequest,
		[]string{"The request body contains invalid JSON format."}, err)
}

// PayloadTooLarge creates a 413 error
func PayloadTooLarge(err error) *AppError {
	return NewAppError("PAYLOAD_TOO_LARGE", "Request entity too large", http.StatusRequestEntityTooLarge,
		[]string{"The image file is too large. Please use a smaller image or compress it."}, err)
}

// Timeout creates a 408 error
func Timeout(err error) *AppError {
	return NewAppError("REQUEST_TIMEOUT", "Request timeout", http.StatusRequestTimeout,
		[]string{"The request took too long to process. Please try again."}, err)
}

// Internal creates a 500 error
func Internal(message string, err error) *AppError {
	return NewAppError("INTERNAL_ERROR", message, http.StatusInternalServerError,
		[]string{"An unexpected error occurred. Please try again."}, err)
}

// ServiceUnavailable creates a 503 error
func ServiceUnavailable(message string, err error) *AppError {
	return NewAppError("SERVICE_UNAVAILABLE", message, http.StatusServiceUnavailable,
		[]string{"The data store is not connected yet. Please retry shortly."}, err)
}

// Domain-specific errors

var (
	ErrRiderNotFound      = NotFound("Rider not found", nil)
	ErrRiderAlreadyExists = AlreadyExists("Email or NRIC already registered")
	ErrDuplicateOnUpdate  = Duplicate(nil, "Email or NRIC already registered by another rider")
	ErrDuplicateField     = Duplicate(nil, "Email or NRIC already exists")
	ErrStoreUnavailable   = ServiceUnavailable("Service unavailable", nil)
)

// GetAppError attempts to convert an error to AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	// Return generic internal error if not an AppError
	return Internal("Internal server error", err)
}

// WithCause returns a copy of appErr that wraps err, leaving the shared sentinel untouched.
func WithCause(appErr *AppError, err error) *AppError {
	if appErr == nil {
		return nil
	}
	cp := *appErr
	cp.Details = append([]string(nil), appErr.Details...)
	if cp.Details == nil {
		cp.Details = []string{}
	}
	cp.Err = err
	return &cp
}
