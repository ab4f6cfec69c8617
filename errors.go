package mint

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// Authorization errors
	ErrUnauthorized = errors.New("mint: unauthorized")

	// Pause gate errors
	ErrContractPaused = errors.New("mint: contract paused")
	ErrAlreadyPaused  = errors.New("mint: already paused")
	ErrNotPaused      = errors.New("mint: not paused")

	// Transfer errors
	ErrZeroAddress           = errors.New("mint: zero address")
	ErrInsufficientBalance   = errors.New("mint: insufficient balance")
	ErrInsufficientAllowance = errors.New("mint: insufficient allowance")

	// Supply errors
	ErrSupplyCapExceeded  = errors.New("mint: supply cap exceeded")
	ErrCeilingBelowSupply = errors.New("mint: ceiling below supply")

	// Batch errors
	ErrLengthMismatch = errors.New("mint: length mismatch")

	// Engine errors
	ErrNotStarted     = errors.New("mint: engine not started")
	ErrAlreadyStarted = errors.New("mint: engine already started")
	ErrNilStore       = errors.New("mint: nil store")
	ErrGenesisApplied = errors.New("mint: genesis already applied")

	// Journal errors
	ErrSequenceConflict = errors.New("mint: journal sequence conflict")
	ErrCorruptJournal   = errors.New("mint: corrupt journal")
	ErrEventNotFound    = errors.New("mint: event not found")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("mint: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "mint: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("mint: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// IsPauseError returns true if the error concerns the pause switch.
func IsPauseError(err error) bool {
	return errors.Is(err, ErrContractPaused) ||
		errors.Is(err, ErrAlreadyPaused) ||
		errors.Is(err, ErrNotPaused)
}

// IsInsufficientFunds returns true if the error reports a shortfall in
// balance or allowance.
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientAllowance)
}

// IsSupplyError returns true if the error concerns the supply ceiling.
func IsSupplyError(err error) bool {
	return errors.Is(err, ErrSupplyCapExceeded) ||
		errors.Is(err, ErrCeilingBelowSupply)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSequenceConflict)
}
