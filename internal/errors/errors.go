package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsAPIError unwraps err into an *APIError if possible
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// ValidationError creates a VALIDATION_ERROR tied to a request field
func ValidationError(field, message string) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: message,
		Field:   field,
		Status:  http.StatusUnprocessableEntity,
	}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return &APIError{
		Code:    ErrInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// IntegrityError reports a stored record that violates a referential
// invariant, e.g. a comment whose author row cannot be resolved.
func IntegrityError(message string) *APIError {
	return &APIError{
		Code:    ErrIntegrity,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// StoreUnavailable reports a failed write or read against the entity store
func StoreUnavailable(op string, err error) *APIError {
	apiErr := &APIError{
		Code:    ErrStoreUnavailable,
		Message: fmt.Sprintf("store operation failed: %s", op),
		Status:  http.StatusServiceUnavailable,
	}
	if err != nil {
		apiErr.Details = err.Error()
	}
	return apiErr
}

// CaptchaInvalid reports a missing or unvalidated captcha token
func CaptchaInvalid(message string) *APIError {
	if message == "" {
		message = "captcha validation required"
	}
	return &APIError{
		Code:    ErrCaptchaInvalid,
		Message: message,
		Field:   "captchaToken",
		Status:  http.StatusUnprocessableEntity,
	}
}

// PayloadTooLarge reports an upload exceeding its size limit
func PayloadTooLarge(message string) *APIError {
	return &APIError{
		Code:    ErrPayloadTooLarge,
		Message: message,
		Status:  http.StatusRequestEntityTooLarge,
	}
}
