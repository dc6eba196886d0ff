package generation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/charforge-api/internal/domain"
)

// Static fallback candidates per artifact kind, most capable first. Used
// whenever model discovery fails or yields nothing relevant.
var (
	defaultImageModels = []string{
		"gemini-2.0-flash-preview-image-generation",
		"imagen-3.0-generate-002",
		"gemini-2.0-flash-exp",
	}

	defaultStoryModels = []string{
		"gemini-2.0-flash",
		"gemini-1.5-pro",
		"gemini-1.5-flash",
	}
)

// Name-substring hints that mark a discovered model as relevant to a kind.
var (
	imageModelHints = []string{"image", "imagen"}
	storyModelHints = []string{"flash", "pro"}

	// Discovered models matching these are never story candidates even if a
	// hint matches ("imagen-3.0-generate" contains no story hint, but
	// "gemini-2.0-flash-preview-image-generation" does).
	storyModelExclusions = []string{"image", "imagen", "embedding", "tts", "audio", "vision"}
)

// ResolveCandidates builds the ordered candidate model list for a request
// by querying the family for its available models and filtering them by
// name relevance to the artifact kind. Discovery failure is non-fatal: it
// degrades to the static default list. Never returns an empty list and
// never returns an error.
func ResolveCandidates(
	ctx context.Context,
	family ProviderFamily,
	kind domain.ArtifactKind,
	logger *slog.Logger,
) []string {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := defaultCandidates(kind)

	if family == nil {
		return defaults
	}

	models, err := family.ListModels(ctx)
	if err != nil {
		logger.WarnContext(ctx, "model discovery failed, using static defaults",
			"family", family.Name(),
			"kind", string(kind),
			"error", err)
		return defaults
	}

	filtered := filterByKind(models, kind)
	if len(filtered) == 0 {
		logger.DebugContext(ctx, "no discovered model matched kind, using static defaults",
			"family", family.Name(),
			"kind", string(kind),
			"discovered", len(models))
		return defaults
	}

	logger.DebugContext(ctx, "resolved candidate models from discovery",
		"family", family.Name(),
		"kind", string(kind),
		"candidates", len(filtered),
		"best", filtered[0])
	return filtered
}

func defaultCandidates(kind domain.ArtifactKind) []string {
	if kind == domain.ArtifactKindStory {
		return defaultStoryModels
	}
	return defaultImageModels
}

// filterByKind keeps models whose names hint at the requested kind,
// preserving discovery order so the best (first) match leads.
func filterByKind(models []string, kind domain.ArtifactKind) []string {
	hints := imageModelHints
	var exclusions []string
	if kind == domain.ArtifactKindStory {
		hints = storyModelHints
		exclusions = storyModelExclusions
	}

	var filtered []string
outer:
	for _, model := range models {
		name := strings.ToLower(model)
		for _, excl := range exclusions {
			if strings.Contains(name, excl) {
				continue outer
			}
		}
		for _, hint := range hints {
			if strings.Contains(name, hint) {
				filtered = append(filtered, model)
				continue outer
			}
		}
	}

	return filtered
}
