package domain

import (
	"errors"
	"regexp"
	"strings"
)

// Common validation errors for CharacterProfile
var (
	ErrEmptyCharacterName   = errors.New("character name cannot be empty")
	ErrCharacterNameTooLong = errors.New("character name exceeds maximum length")
)

// MaxCharacterNameLength bounds the subject name so derived identifiers
// and prompts stay a sane size.
const MaxCharacterNameLength = 200

// trailingNumericSegment matches the last numeric path segment of a
// reference URL, e.g. "/people/1/" or "/people/1".
var trailingNumericSegment = regexp.MustCompile(`/(\d+)/?$`)

// CharacterProfile describes the subject of a generation request: a name
// plus arbitrary free-text descriptive attributes. An optional reference
// URL ties the profile back to an upstream catalog entry.
type CharacterProfile struct {
	Name         string            `json:"name"`
	ReferenceURL string            `json:"url,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// Validate checks if the profile has valid data.
// Returns an error if any field fails validation.
func (p *CharacterProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyCharacterName
	}

	if len(p.Name) > MaxCharacterNameLength {
		return ErrCharacterNameTooLong
	}

	return nil
}

// CharacterID derives the cache key for this profile.
//
// If the reference URL ends in a numeric path segment, that segment is the
// identifier (so "https://x/people/1/" yields "1"). Otherwise the
// identifier is the lower-cased name with whitespace runs collapsed to
// single hyphens ("Leia Organa" yields "leia-organa").
func (p *CharacterProfile) CharacterID() string {
	if p.ReferenceURL != "" {
		if m := trailingNumericSegment.FindStringSubmatch(p.ReferenceURL); m != nil {
			return m[1]
		}
	}

	return strings.Join(strings.Fields(strings.ToLower(p.Name)), "-")
}
