// Package callerr implements the error classes returned by the call
// signaling core. Every public operation wraps its cause in exactly one of
// these so callers can dispatch on the class with errors.As and on the cause
// with errors.Is.
package callerr

import (
	"fmt"
)

// InvalidArgumentError indicates malformed input: a bad handle, an empty
// codec list on accept, a mismatched remote contact.
type InvalidArgumentError struct {
	Err error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("InvalidArgumentError: %v", e.Err)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError indicates a state machine was asked to complete a
// transition it is not currently pending for.
type InvalidTransitionError struct {
	Err error
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("InvalidTransitionError: %v", e.Err)
}

func (e *InvalidTransitionError) Unwrap() error {
	return e.Err
}

// NotAvailableError indicates the operation is not meaningful in the current
// state.
type NotAvailableError struct {
	Err error
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("NotAvailableError: %v", e.Err)
}

func (e *NotAvailableError) Unwrap() error {
	return e.Err
}

// NotImplementedError indicates an optional extension point was not
// configured.
type NotImplementedError struct {
	Err error
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("NotImplementedError: %v", e.Err)
}

func (e *NotImplementedError) Unwrap() error {
	return e.Err
}

// AlreadyResolvedError indicates a terminal transition was attempted twice.
type AlreadyResolvedError struct {
	Err error
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("AlreadyResolvedError: %v", e.Err)
}

func (e *AlreadyResolvedError) Unwrap() error {
	return e.Err
}

// CancelledError is delivered to any pending result whose owning object was
// torn down before resolution.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("CancelledError: %v", e.Err)
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}
