package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrInvalidInput is returned when the character description is malformed.
	// No provider call is attempted for invalid input.
	ErrInvalidInput = errors.New("invalid generation input")

	// ErrModelNotFound is returned when a provider reports the requested
	// model as unknown or unsupported. Non-fatal: drives fallthrough to the
	// next candidate model.
	ErrModelNotFound = errors.New("model not found")

	// ErrTransient is returned for quota and rate-limit failures that might
	// resolve on retry.
	ErrTransient = errors.New("transient provider failure")

	// ErrUnavailable is returned when a provider family is unusable, for
	// example because its credential is missing.
	ErrUnavailable = errors.New("provider family unavailable")

	// ErrInvalidResponse is returned when a provider response matches none
	// of the known shapes or yields an empty artifact.
	ErrInvalidResponse = errors.New("invalid response from provider")

	// ErrExhausted is the terminal error after every candidate model in
	// every family has been attempted without success.
	ErrExhausted = errors.New("all generation options exhausted")

	// ErrInvalidConfig is returned when the orchestrator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generation configuration")
)

// ExhaustedError is the terminal failure after both families have run out
// of options. It carries each family's last error message, already
// truncated, and a remediation hint suitable for showing to callers.
type ExhaustedError struct {
	Primary  string
	Fallback string
	Hint     string
}

// Error implements the error interface for ExhaustedError.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v: primary: %s; fallback: %s (%s)",
		ErrExhausted, e.Primary, e.Fallback, e.Hint)
}

// Unwrap lets errors.Is(err, ErrExhausted) match.
func (e *ExhaustedError) Unwrap() error {
	return ErrExhausted
}
