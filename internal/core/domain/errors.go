package domain

import (
	"errors"
	"fmt"
)

// DomainError is a business error with a structured code. The Message
// field carries the exact text returned to clients in a failed
// response, so it must stay stable across releases.
type DomainError struct {
	Code    string // error code, e.g. "PK-STOR-4040"
	Message string // client-facing message
	Details string // optional additional details, never sent to clients
	Cause   error  // underlying error, if any
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches two DomainErrors by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: e.Details, Cause: cause}
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// The full error taxonomy of the request path. Every failed response a
// client can receive maps to exactly one of these.
var (
	ErrEntryNotFound      = NewDomainError("PK-STOR-4040", "Entry does not exist.")
	ErrEntryAddFailed     = NewDomainError("PK-STOR-4001", "Entry could not be added.")
	ErrEntryDeleteFailed  = NewDomainError("PK-STOR-4002", "Entry could not be deleted.")
	ErrInvalidQuerySyntax = NewDomainError("PK-QRY-4000", "Invalid query syntax.")
	ErrUnknownRequestType = NewDomainError("PK-PROT-4000", "Request type does not exist.")
	ErrInternal           = NewDomainError("PK-CORE-5000", "Internal server error.")
)

// ClientMessage extracts the client-facing message from an error.
// Unexpected (non-domain) errors are reported as internal, keeping
// their detail out of the response.
func ClientMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return ErrInternal.Message
}
