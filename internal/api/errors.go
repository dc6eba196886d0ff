package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/charforge-api/internal/generation"
	"github.com/phrazzld/charforge-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, generation.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Upstream failures: every candidate model in every family failed
	case errors.Is(err, generation.ErrExhausted):
		return http.StatusBadGateway

	// No usable provider family at all
	case errors.Is(err, generation.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, generation.ErrInvalidInput):
		return "Invalid character description"

	case errors.Is(err, store.ErrCreationNotFound):
		return "No creation found for this character"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, generation.ErrExhausted):
		return "Generation failed after trying all available models"

	case errors.Is(err, generation.ErrUnavailable):
		return "No generation provider is configured"

	default:
		return "An unexpected error occurred"
	}
}

// GetRemediationHint extracts the remediation hint from a terminal
// generation failure. Returns an empty string for every other error.
func GetRemediationHint(err error) string {
	var exhausted *generation.ExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted.Hint
	}
	return ""
}
