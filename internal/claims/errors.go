package claims

import (
	"errors"
	"fmt"
)

var (
	// ErrClaimNotFound is returned when an operation references a claim id
	// that is not in the collection.
	ErrClaimNotFound = errors.New("claims: claim not found")

	// ErrClaimNotEditable is returned when a mutation targets a claim whose
	// status no longer permits edits (anything past draft).
	ErrClaimNotEditable = errors.New("claims: claim is not editable")

	// ErrBillNotFound is returned when a bill id does not exist on the claim.
	ErrBillNotFound = errors.New("claims: bill not found")
)

// ValidationError reports malformed input on claim or bill construction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("claims: invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransitionError reports a status change that is not present in the
// workflow transition table.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("claims: invalid transition from %s to %s", e.From, e.To)
}

// IsTransitionError reports whether err is (or wraps) a TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// PersistenceError wraps a storage backend failure surfaced at the
// repository boundary. Callers never see backend-specific errors directly.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("claims: persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistenceError reports whether err is (or wraps) a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
