package store

import (
	"context"

	"github.com/phrazzld/charforge-api/internal/domain"
)

// CreationStore defines the interface for cached creation persistence.
// Implementations treat the cache as strictly advisory: a character has
// at most one cached creation, keyed by its derived character ID.
type CreationStore interface {
	// GetByCharacterID retrieves the cached creation for a character.
	// Returns ErrCreationNotFound when no creation has been cached.
	// The returned creation has its artifact populated from JSONB.
	GetByCharacterID(ctx context.Context, characterID string) (*domain.Creation, error)

	// Create caches a creation. When a creation already exists for the
	// character the call is a no-op: the first cached result wins, so
	// concurrent generations for the same character cannot clobber each
	// other.
	Create(ctx context.Context, creation *domain.Creation) error
}
