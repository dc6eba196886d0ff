package domain

import "errors"

// ArtifactKind identifies what a generation request should produce.
type ArtifactKind string

// Possible artifact kinds
const (
	ArtifactKindImage  ArtifactKind = "image"
	ArtifactKindStory  ArtifactKind = "story"
	ArtifactKindSketch ArtifactKind = "sketch"
)

// Common validation errors for GeneratedArtifact
var (
	ErrInvalidArtifactKind = errors.New("invalid artifact kind")
	ErrEmptyArtifact       = errors.New("artifact must carry an image URI or text")
	ErrAmbiguousArtifact   = errors.New("artifact cannot carry both an image URI and text")
)

// GeneratedArtifact is the result of a successful generation: either an
// image reference (a data URI or a remote URL) or a block of text.
// Exactly one of ImageURI and Text is set.
type GeneratedArtifact struct {
	Kind     ArtifactKind `json:"kind"`
	ImageURI string       `json:"image_uri,omitempty"`
	Text     string       `json:"text,omitempty"`
}

// NewImageArtifact creates an artifact carrying an image reference.
func NewImageArtifact(kind ArtifactKind, imageURI string) GeneratedArtifact {
	return GeneratedArtifact{Kind: kind, ImageURI: imageURI}
}

// NewTextArtifact creates an artifact carrying generated text.
func NewTextArtifact(kind ArtifactKind, text string) GeneratedArtifact {
	return GeneratedArtifact{Kind: kind, Text: text}
}

// IsImage reports whether the artifact carries an image reference.
func (a *GeneratedArtifact) IsImage() bool {
	return a.ImageURI != ""
}

// Validate checks if the artifact has valid data.
// Returns an error if any field fails validation.
func (a *GeneratedArtifact) Validate() error {
	if !IsValidArtifactKind(a.Kind) {
		return ErrInvalidArtifactKind
	}

	if a.ImageURI == "" && a.Text == "" {
		return ErrEmptyArtifact
	}

	if a.ImageURI != "" && a.Text != "" {
		return ErrAmbiguousArtifact
	}

	return nil
}

// IsValidArtifactKind checks if the given kind is a valid ArtifactKind.
func IsValidArtifactKind(kind ArtifactKind) bool {
	switch kind {
	case ArtifactKindImage, ArtifactKindStory, ArtifactKindSketch:
		return true
	default:
		return false
	}
}
