package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Creation
var (
	ErrNilCreationID            = errors.New("creation ID cannot be nil")
	ErrEmptyCreationCharacterID = errors.New("creation character ID cannot be empty")
	ErrEmptyCreationName        = errors.New("creation character name cannot be empty")
	ErrEmptyCreationPrompt      = errors.New("creation prompt cannot be empty")
)

// Creation is a cached generation result keyed by character identifier.
// A creation is written once after a successful generation and never
// overwritten; subsequent requests for the same character read it back.
// ID is a surrogate identifier for log correlation; the cache key is
// CharacterID.
type Creation struct {
	ID            uuid.UUID         `json:"id"`
	CharacterID   string            `json:"character_id"`
	CharacterName string            `json:"character_name"`
	Artifact      GeneratedArtifact `json:"artifact"`
	PromptUsed    string            `json:"prompt_used"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NewCreation creates a new Creation for the given character and artifact.
// It sets the creation timestamp and validates the result.
// Returns an error if validation fails.
func NewCreation(
	characterID, characterName string,
	artifact GeneratedArtifact,
	promptUsed string,
) (*Creation, error) {
	creation := &Creation{
		ID:            uuid.New(),
		CharacterID:   characterID,
		CharacterName: characterName,
		Artifact:      artifact,
		PromptUsed:    promptUsed,
		CreatedAt:     time.Now().UTC(),
	}

	if err := creation.Validate(); err != nil {
		return nil, err
	}

	return creation, nil
}

// Validate checks if the Creation has valid data.
// Returns an error if any field fails validation.
func (c *Creation) Validate() error {
	if c.ID == uuid.Nil {
		return ErrNilCreationID
	}

	if c.CharacterID == "" {
		return ErrEmptyCreationCharacterID
	}

	if c.CharacterName == "" {
		return ErrEmptyCreationName
	}

	if c.PromptUsed == "" {
		return ErrEmptyCreationPrompt
	}

	return c.Artifact.Validate()
}
