package generation

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/charforge-api/internal/domain"
)

func TestResolveCandidatesUsesDiscoveredModels(t *testing.T) {
	t.Parallel()

	family := &fakeFamily{
		name: "gemini",
		models: []string{
			"gemini-2.0-flash",
			"gemini-2.0-flash-preview-image-generation",
			"imagen-3.0-generate-002",
			"text-embedding-004",
		},
	}

	got := ResolveCandidates(context.Background(), family, domain.ArtifactKindImage, slog.Default())
	assert.Equal(t, []string{
		"gemini-2.0-flash-preview-image-generation",
		"imagen-3.0-generate-002",
	}, got, "image candidates keep discovery order with the best match first")
}

func TestResolveCandidatesStoryExcludesImageModels(t *testing.T) {
	t.Parallel()

	family := &fakeFamily{
		name: "gemini",
		models: []string{
			"gemini-2.0-flash-preview-image-generation",
			"gemini-2.0-flash",
			"gemini-1.5-pro",
			"text-embedding-004",
		},
	}

	got := ResolveCandidates(context.Background(), family, domain.ArtifactKindStory, slog.Default())
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-pro"}, got)
}

func TestResolveCandidatesDiscoveryFailureDegradesToDefaults(t *testing.T) {
	t.Parallel()

	family := &fakeFamily{
		name:    "gemini",
		listErr: errors.New("connection refused"),
	}

	got := ResolveCandidates(context.Background(), family, domain.ArtifactKindImage, slog.Default())
	assert.Equal(t, defaultImageModels, got, "discovery failure deterministically yields the static list")
}

func TestResolveCandidatesEmptyFilterDegradesToDefaults(t *testing.T) {
	t.Parallel()

	family := &fakeFamily{
		name:   "gemini",
		models: []string{"text-embedding-004"},
	}

	got := ResolveCandidates(context.Background(), family, domain.ArtifactKindStory, slog.Default())
	assert.Equal(t, defaultStoryModels, got)
}

func TestResolveCandidatesNilFamilyDegradesToDefaults(t *testing.T) {
	t.Parallel()

	got := ResolveCandidates(context.Background(), nil, domain.ArtifactKindSketch, slog.Default())
	assert.Equal(t, defaultImageModels, got)
}
