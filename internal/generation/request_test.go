package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/charforge-api/internal/domain"
)

func TestNewGenerationRequestBuildsPrompt(t *testing.T) {
	t.Parallel()

	profile := domain.CharacterProfile{
		Name: "Luke Skywalker",
		Attributes: map[string]string{
			"hair_color": "blond",
			"eye_color":  "blue",
			"homeworld":  "Tatooine",
		},
	}

	req, err := NewGenerationRequest(domain.ArtifactKindImage, profile)
	require.NoError(t, err)

	assert.Equal(t, domain.ArtifactKindImage, req.Kind)
	assert.Contains(t, req.RawPrompt, "Luke Skywalker")
	assert.Contains(t, req.RawPrompt, "hair color: blond")

	// Attribute order is sorted so the same profile always derives the
	// same prompt.
	eye := strings.Index(req.RawPrompt, "eye color")
	hair := strings.Index(req.RawPrompt, "hair color")
	home := strings.Index(req.RawPrompt, "homeworld")
	assert.True(t, eye < hair && hair < home, "attributes render in sorted key order")

	again, err := NewGenerationRequest(domain.ArtifactKindImage, profile)
	require.NoError(t, err)
	assert.Equal(t, req.RawPrompt, again.RawPrompt)
}

func TestNewGenerationRequestPromptVariesByKind(t *testing.T) {
	t.Parallel()

	profile := domain.CharacterProfile{Name: "Leia Organa"}

	image, err := NewGenerationRequest(domain.ArtifactKindImage, profile)
	require.NoError(t, err)
	sketch, err := NewGenerationRequest(domain.ArtifactKindSketch, profile)
	require.NoError(t, err)
	story, err := NewGenerationRequest(domain.ArtifactKindStory, profile)
	require.NoError(t, err)

	assert.Contains(t, image.RawPrompt, "portrait")
	assert.Contains(t, sketch.RawPrompt, "sketch")
	assert.Contains(t, story.RawPrompt, "short story")
}

func TestNewGenerationRequestInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := NewGenerationRequest(domain.ArtifactKindImage, domain.CharacterProfile{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewGenerationRequest("poem", domain.CharacterProfile{Name: "Leia Organa"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want OutcomeKind
	}{
		{"nil", nil, OutcomeSuccess},
		{"status 404", &APIError{StatusCode: 404, Message: "unknown model"}, OutcomeNotFound},
		{"status 429", &APIError{StatusCode: 429, Message: "slow down"}, OutcomeTransient},
		{"not found message", &APIError{StatusCode: 400, Message: "model xyz is not found for API version"}, OutcomeNotFound},
		{"not supported message", &APIError{StatusCode: 400, Message: "generateContent is not supported"}, OutcomeNotFound},
		{"quota message", &APIError{StatusCode: 500, Message: "Quota exceeded for requests"}, OutcomeTransient},
		{"resource exhausted message", &APIError{StatusCode: 503, Message: "RESOURCE_EXHAUSTED"}, OutcomeTransient},
		{"embedded 429", &APIError{StatusCode: 500, Message: "upstream returned 429"}, OutcomeTransient},
		{"generic failure", &APIError{StatusCode: 500, Message: "internal error"}, OutcomeFatal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
