package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrValidation       ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest       ErrorCode = "BAD_REQUEST"
	ErrInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrIntegrity        ErrorCode = "INTEGRITY_ERROR"
	ErrStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrSideEffectFailed ErrorCode = "SIDE_EFFECT_FAILED"
	ErrCaptchaInvalid   ErrorCode = "CAPTCHA_INVALID"
	ErrPayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:         http.StatusNotFound,
	ErrValidation:       http.StatusUnprocessableEntity,
	ErrBadRequest:       http.StatusBadRequest,
	ErrInternalError:    http.StatusInternalServerError,
	ErrIntegrity:        http.StatusInternalServerError,
	ErrStoreUnavailable: http.StatusServiceUnavailable,
	ErrCacheUnavailable: http.StatusServiceUnavailable,
	ErrSideEffectFailed: http.StatusInternalServerError,
	ErrCaptchaInvalid:   http.StatusUnprocessableEntity,
	ErrPayloadTooLarge:  http.StatusRequestEntityTooLarge,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
