package generation

import "context"

// Generator defines the boundary between the application core and the
// external generative-AI services, following the hexagonal architecture
// pattern. The orchestrator is the production implementation; tests and
// the service layer substitute fakes.
type Generator interface {
	// Generate produces an artifact for the request, trying candidate
	// models across provider families in priority order. It returns the
	// first successful result or an error from the package taxonomy
	// (see errors.go).
	Generate(ctx context.Context, req *GenerationRequest) (*Result, error)
}
