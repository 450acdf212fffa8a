// Package medra structured status codes and error types
package medra

import (
	"fmt"
)

// Status is the result code of a runtime operation, mirroring the
// numeric result codes a device runtime reports. StatusSuccess is the
// zero value; every other code is a failure.
type Status int

const (
	// Operation completed
	StatusSuccess Status = iota
	// Invalid argument supplied by the caller
	StatusInvalidArg
	// Device memory allocation failure
	StatusOutOfMemory
	// Program handle is nil or holds no kernels
	StatusInvalidProgram
	// Kernel name not present in the loaded program
	StatusInvalidKernel
	// Thread-group geometry is degenerate or oversized
	StatusInvalidThreadSpace
	// Queue rejected a submission
	StatusQueueError
	// Completion event not yet signaled
	StatusEventNotReady
	// Device handle was already destroyed
	StatusDeviceDestroyed
)

// String returns the diagnostic string for a status code.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInvalidArg:
		return "invalid argument"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusInvalidProgram:
		return "invalid program"
	case StatusInvalidKernel:
		return "invalid kernel"
	case StatusInvalidThreadSpace:
		return "invalid thread-group space"
	case StatusQueueError:
		return "queue error"
	case StatusEventNotReady:
		return "event not ready"
	case StatusDeviceDestroyed:
		return "device destroyed"
	default:
		return "unknown status"
	}
}

// Error is a failed runtime operation with its status code and context.
type Error struct {
	Status  Status
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("medra: %s in %s: %s (caused by: %v)",
			e.Status, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("medra: %s in %s: %s", e.Status, e.Op, e.Message)
}

// Unwrap allows error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a runtime error with the given status code.
func NewError(status Status, op, message string, err error) error {
	return &Error{
		Status:  status,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// StatusOf extracts the status code from an error. A nil error maps to
// StatusSuccess; a non-runtime error maps to StatusQueueError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	if e, ok := err.(*Error); ok {
		return e.Status
	}
	return StatusQueueError
}

// Common pre-defined errors

var (
	// ErrDeviceDestroyed indicates use of a released device handle
	ErrDeviceDestroyed = NewError(StatusDeviceDestroyed, "Device", "device handle was destroyed", nil)

	// ErrInvalidSize indicates a non-positive allocation size
	ErrInvalidSize = NewError(StatusInvalidArg, "CreateBuffer", "size must be positive", nil)

	// ErrDoubleDestroy indicates a second destroy of the same resource
	ErrDoubleDestroy = NewError(StatusInvalidArg, "Destroy", "resource already destroyed", nil)

	// ErrEventNotReady indicates the submission has not completed
	ErrEventNotReady = NewError(StatusEventNotReady, "Event", "submission has not completed", nil)
)

// IsInvalidArg checks if an error carries StatusInvalidArg.
func IsInvalidArg(err error) bool {
	return StatusOf(err) == StatusInvalidArg
}

// IsOutOfMemory checks if an error carries StatusOutOfMemory.
func IsOutOfMemory(err error) bool {
	return StatusOf(err) == StatusOutOfMemory
}
