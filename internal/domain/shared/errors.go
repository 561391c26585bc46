// Package shared contains the error kinds shared by every layer of the
// tracker. Domain operations signal rejected input through a "changed" bool;
// the errors below are reserved for I/O and for the outer interfaces.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds for errors.Is checks.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrInvalidFormat = errors.New("invalid format")
	ErrInvalidID     = errors.New("invalid ID")

	// ErrCancelled reports that a confirm or prompt collaborator declined.
	ErrCancelled = errors.New("cancelled")

	ErrStorage            = errors.New("storage error")
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents an error with the component and operation it came from.
type DomainError struct {
	Domain  string // e.g. "roster", "ledger", "storage"
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches either the kind or the wrapped cause.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

var (
	ErrStudentNotFound = NewDomainError("roster", "Find", ErrNotFound, "student not found")
	ErrSlotNotFound    = NewDomainError("storage", "Load", ErrNotFound, "slot is empty")
	ErrUnknownFlag     = NewDomainError("ledger", "ParseFlag", ErrInvalidInput, "unknown attendance flag")
	ErrInvalidDate     = NewDomainError("ledger", "ParseDate", ErrInvalidFormat, "date must be YYYY-MM-DD")
	ErrBackupNotFound  = NewDomainError("storage", "Backup", ErrNotFound, "backup not found")
	ErrChatSendFailed  = NewDomainError("telegram", "Send", ErrExternalService, "chat API request failed")
	ErrClipboard       = NewDomainError("clipboard", "Write", ErrExternalService, "clipboard is unavailable")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsCancelled checks if a collaborator declined the action.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
