// Package ai provides common types and utilities for generative model
// providers. It defines the error taxonomy shared by the LLM, TTS, STT and
// image providers and by the flows built on top of them.
package ai

import (
	"errors"
	"fmt"
)

// Common error types used across AI providers
var (
	// ErrRecoverable indicates a temporary failure that may succeed if retried.
	// Examples: network timeout, rate limiting, temporary service unavailability.
	// Nothing retries automatically; the end user decides.
	ErrRecoverable = errors.New("recoverable AI provider error")

	// ErrFatal indicates a permanent failure that will not succeed if retried.
	// Examples: invalid API key, content policy rejection, empty media in a response.
	ErrFatal = errors.New("fatal AI provider error")

	// ErrInvalidInput indicates the request was rejected before any provider call.
	ErrInvalidInput = errors.New("invalid input")
)

// IsRecoverable checks if an error is recoverable and could be retried
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrRecoverable)
}

// IsFatal checks if an error is fatal and should not be retried
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// IsInvalidInput checks if an error was caused by the caller's input
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// InvalidInput formats an error that wraps ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// RetryableError wraps an underlying error with retry classification
type RetryableError struct {
	Underlying error
	Retryable  bool
	Message    string
}

func (e *RetryableError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Underlying == nil {
		return e.class().Error()
	}
	return e.Underlying.Error()
}

// Unwrap exposes both the classification sentinel and the underlying cause.
func (e *RetryableError) Unwrap() []error {
	if e.Underlying == nil {
		return []error{e.class()}
	}
	return []error{e.class(), e.Underlying}
}

func (e *RetryableError) class() error {
	if e.Retryable {
		return ErrRecoverable
	}
	return ErrFatal
}

// NewRecoverableError creates a recoverable error with context
func NewRecoverableError(underlying error, message string) error {
	return &RetryableError{
		Underlying: underlying,
		Retryable:  true,
		Message:    message,
	}
}

// NewFatalError creates a fatal error with context
func NewFatalError(underlying error, message string) error {
	return &RetryableError{
		Underlying: underlying,
		Retryable:  false,
		Message:    message,
	}
}
