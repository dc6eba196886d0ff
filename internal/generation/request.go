package generation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/charforge-api/internal/domain"
)

// GenerationRequest carries everything the orchestrator needs for one
// generation: the artifact kind, the subject profile, and the prompt
// derived from it. Built fresh per incoming call and never mutated.
type GenerationRequest struct {
	Kind      domain.ArtifactKind
	Profile   domain.CharacterProfile
	RawPrompt string
}

// NewGenerationRequest validates the subject profile and derives the raw
// prompt for the requested artifact kind.
// Returns an ErrInvalidInput-wrapped error if the profile or kind is invalid.
func NewGenerationRequest(kind domain.ArtifactKind, profile domain.CharacterProfile) (*GenerationRequest, error) {
	if !domain.IsValidArtifactKind(kind) {
		return nil, fmt.Errorf("%w: unknown artifact kind %q", ErrInvalidInput, kind)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &GenerationRequest{
		Kind:      kind,
		Profile:   profile,
		RawPrompt: buildPrompt(kind, profile),
	}, nil
}

// buildPrompt renders the free-text prompt for the given kind. Attribute
// order is sorted so the same profile always yields the same prompt, which
// keeps the cached prompt_used column stable.
func buildPrompt(kind domain.ArtifactKind, profile domain.CharacterProfile) string {
	details := describeAttributes(profile.Attributes)

	var b strings.Builder
	switch kind {
	case domain.ArtifactKindImage:
		b.WriteString("A detailed character portrait of ")
		b.WriteString(profile.Name)
		b.WriteString(", cinematic lighting, rich background.")
	case domain.ArtifactKindSketch:
		b.WriteString("A rough monochrome pencil sketch of ")
		b.WriteString(profile.Name)
		b.WriteString(", loose stylized linework on textured paper.")
	case domain.ArtifactKindStory:
		b.WriteString("Write a short story of about three paragraphs featuring ")
		b.WriteString(profile.Name)
		b.WriteString(".")
	}

	if details != "" {
		b.WriteString(" Known details: ")
		b.WriteString(details)
		b.WriteString(".")
	}

	return b.String()
}

// describeAttributes flattens the attribute map into "key: value" pairs
// joined by semicolons, keys sorted, underscores rendered as spaces.
func describeAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(attrs))
	for k, v := range attrs {
		if strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		label := strings.ReplaceAll(k, "_", " ")
		pairs = append(pairs, fmt.Sprintf("%s: %s", label, attrs[k]))
	}

	return strings.Join(pairs, "; ")
}
