package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/phrazzld/charforge-api/internal/domain"
)

// OutcomeKind classifies the result of a single model invocation.
type OutcomeKind int

// Possible outcome kinds
const (
	// OutcomeSuccess means a known response shape yielded a non-empty artifact.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeNotFound means the model is unknown to the provider; the
	// driver advances to the next candidate.
	OutcomeNotFound

	// OutcomeTransient means a quota or rate-limit failure; eligible for
	// one delayed retry of the same model.
	OutcomeTransient

	// OutcomeFatal means an unclassified failure; the driver advances to
	// the next candidate and keeps the error for final reporting.
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransient:
		return "transient"
	default:
		return "fatal"
	}
}

// AttemptOutcome is the tagged result of attempting one model.
type AttemptOutcome struct {
	Kind     OutcomeKind
	Artifact *domain.GeneratedArtifact
	Err      error
}

func successOutcome(artifact *domain.GeneratedArtifact) AttemptOutcome {
	return AttemptOutcome{Kind: OutcomeSuccess, Artifact: artifact}
}

func failureOutcome(err error) AttemptOutcome {
	return AttemptOutcome{Kind: ClassifyError(err), Err: err}
}

// Substrings that identify retryable quota errors in provider messages.
var transientMarkers = []string{"429", "quota", "resource_exhausted", "rate limit"}

// Substrings that identify unknown-model errors in provider messages.
var notFoundMarkers = []string{"not found", "not supported"}

// ClassifyError maps a provider invocation error to an OutcomeKind by
// inspecting the status code and message substrings. A per-call timeout
// expiry counts as transient: the provider may simply be overloaded.
func ClassifyError(err error) OutcomeKind {
	if err == nil {
		return OutcomeSuccess
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTransient
	}

	if errors.Is(err, ErrInvalidResponse) {
		return OutcomeFatal
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 404:
			return OutcomeNotFound
		case 429:
			return OutcomeTransient
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range notFoundMarkers {
		if strings.Contains(msg, marker) {
			return OutcomeNotFound
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return OutcomeTransient
		}
	}

	return OutcomeFatal
}
