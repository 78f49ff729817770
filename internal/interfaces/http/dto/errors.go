package dto

import (
	"net/http"
	"strings"
)

// Codes produced by the HTTP layer itself. Domain errors keep their own code.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes whose status cannot be derived from their shape
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Auth -> 401
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,

	// Permission -> 403
	ErrCodeForbidden:   http.StatusForbidden,
	"ACCOUNT_DISABLED": http.StatusForbidden,
	"NOT_ORGANIZER":    http.StatusForbidden,

	// Conflicts -> 409
	"CONFLICT":             http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Content checks that read as input errors -> 400
	"EMPTY_MESSAGE":    http.StatusBadRequest,
	"MESSAGE_TOO_LONG": http.StatusBadRequest,

	"STORAGE_UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Explicit entries win; otherwise *_NOT_FOUND is 404, INVALID_* is 400,
// ALREADY_* is 409 and every other domain code is a business rule (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == "":
		return http.StatusInternalServerError
	case code == ErrCodeNotFound || strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
