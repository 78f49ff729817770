package shared

import "errors"

// DomainError is a business rule violation identified by a stable code.
// The HTTP layer derives the status from the code, so codes follow the
// NOUN_NOT_FOUND / INVALID_NOUN / ALREADY_VERB naming wherever possible.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string { return e.Message }

// Is compares codes, letting errors.Is match a sentinel even when the
// returned error carries a more specific message.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	return errors.As(target, &other) && other.Code == e.Code
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified concurrently, retry")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in the current state")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "Wallet balance is too low")
)

// ErrorCode returns the code of the first DomainError in err's chain, or "".
func ErrorCode(err error) string {
	if de := (*DomainError)(nil); errors.As(err, &de) {
		return de.Code
	}
	return ""
}
