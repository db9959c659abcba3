// Package exception provides the error types used throughout the Reimport
// framework. Errors are split into two families: item-level failures that
// the processing loop recovers from locally, and orchestration-level
// failures that abort a batch run and surface to the caller. Sentinel
// errors classify the orchestration family so callers can branch with
// errors.Is.
package exception

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying orchestration-level failures.
var (
	// ErrBatchNotFound indicates that a referenced batch does not exist.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrProcessorNotFound indicates that no processor is registered for a batch kind.
	ErrProcessorNotFound = errors.New("processor not found")
	// ErrValidation indicates structural rejection of a request or a failed
	// batch-level validation hook.
	ErrValidation = errors.New("validation failed")
	// ErrProcessing indicates a fatal orchestration-level condition that
	// forced the batch to FAILED.
	ErrProcessing = errors.New("processing failed")
)

// ImportError is the error type raised by the framework. It carries the
// module where the error occurred, a message, the wrapped original error,
// and the sentinel that classifies it.
type ImportError struct {
	// Module indicates the component where the error occurred (e.g. "manager", "repository").
	Module string
	// Message is a concise description of the error.
	Message string
	// Kind is the sentinel error classifying this error, matched by errors.Is.
	Kind error
	// Err is the wrapped original error, if any.
	Err error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap exposes both the classifying sentinel and the original error to
// errors.Is / errors.As.
func (e *ImportError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New creates a new ImportError with an explicit classification.
func New(module, message string, kind, err error) *ImportError {
	return &ImportError{Module: module, Message: message, Kind: kind, Err: err}
}

// NewNotFound creates an ImportError classified as ErrBatchNotFound.
func NewNotFound(module, batchID string) *ImportError {
	return &ImportError{
		Module:  module,
		Message: fmt.Sprintf("batch not found: %s", batchID),
		Kind:    ErrBatchNotFound,
	}
}

// NewProcessorNotFound creates an ImportError classified as
// ErrProcessorNotFound. The registered kinds are included in the message to
// make misconfigured deployments easy to diagnose.
func NewProcessorNotFound(module, kind string, registered []string) *ImportError {
	msg := fmt.Sprintf("no processor registered for batch kind: %s", kind)
	if len(registered) > 0 {
		msg = fmt.Sprintf("%s. Registered kinds: %s", msg, strings.Join(registered, ", "))
	}
	return &ImportError{Module: module, Message: msg, Kind: ErrProcessorNotFound}
}

// NewValidation creates an ImportError classified as ErrValidation.
func NewValidation(module, message string, err error) *ImportError {
	return &ImportError{Module: module, Message: message, Kind: ErrValidation, Err: err}
}

// NewProcessing creates an ImportError classified as ErrProcessing.
func NewProcessing(module, message string, err error) *ImportError {
	return &ImportError{Module: module, Message: message, Kind: ErrProcessing, Err: err}
}

// IsNotFound reports whether err is classified as a missing batch.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}

// IsProcessorNotFound reports whether err is classified as a missing processor.
func IsProcessorNotFound(err error) bool {
	return errors.Is(err, ErrProcessorNotFound)
}

// IsValidation reports whether err is classified as a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsProcessing reports whether err is classified as an orchestration-level
// processing failure.
func IsProcessing(err error) bool {
	return errors.Is(err, ErrProcessing)
}

// ExtractMessage extracts a human-readable message from an error. For
// ImportError it returns the cleaner Message field; otherwise the standard
// Error() string.
func ExtractMessage(err error) string {
	if err == nil {
		return ""
	}
	var ie *ImportError
	if errors.As(err, &ie) {
		if ie.Err != nil {
			return fmt.Sprintf("%s: %s", ie.Message, ExtractMessage(ie.Err))
		}
		return ie.Message
	}
	return err.Error()
}
