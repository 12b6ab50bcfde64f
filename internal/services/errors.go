package services

import (
	"errors"
	"fmt"
)

// Error codes surfaced to API clients. The admin and customer UIs branch on
// these, so they are part of the contract and must stay stable.
const (
	CodeValidation          = "VALIDATION"
	CodeInvalidPlan         = "INVALID_PLAN"
	CodeNotFound            = "NOT_FOUND"
	CodeRoundNotFound       = "ROUND_NOT_FOUND"
	CodeNoProofSubmitted    = "NO_PROOF_SUBMITTED"
	CodeTerminalState       = "TERMINAL_STATE"
	CodeSequenceViolation   = "SEQUENCE_VIOLATION"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
)

// DomainError is a machine-readable business-rule failure.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDomainError builds a DomainError with a formatted message.
func NewDomainError(code, format string, args ...interface{}) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsDomainError unwraps err into a DomainError, or nil if it is not one.
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}
