package generation

import (
	"context"
	"fmt"

	"github.com/phrazzld/charforge-api/internal/domain"
)

// ProviderFamily is one external generative-AI vendor's API surface: a set
// of candidate models behind a single credential. Implementations live in
// internal/platform and expose raw response bodies so that shape matching
// and failure classification stay in this package.
type ProviderFamily interface {
	// Name identifies the family in logs and composed errors.
	Name() string

	// ListModels returns the identifiers of the models currently available
	// to this credential. A transport or parse failure is returned as an
	// error; callers treat it as an empty list.
	ListModels(ctx context.Context) ([]string, error)

	// Invoke sends the prompt to the named model and returns the raw
	// response body. Failed calls return an *APIError where the provider
	// supplied a status code or message.
	Invoke(ctx context.Context, modelID, prompt string) (*RawResponse, error)

	// DefaultModel returns the family's well-known default model for the
	// given artifact kind, used when the family is invoked as a fallback.
	DefaultModel(kind domain.ArtifactKind) string
}

// RawResponse is the undecoded body of a successful provider call. Response
// schemas are heterogeneous across models and providers, so decoding is
// deferred to the shape matchers.
type RawResponse struct {
	Body []byte
}

// APIError describes a failed provider call with enough context for the
// orchestrator to classify it. The message is the provider's own error
// text, already stripped of credentials by the transport layer.
type APIError struct {
	Family     string
	Model      string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s model %s: status %d: %s", e.Family, e.Model, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s model %s: %s", e.Family, e.Model, e.Message)
}
