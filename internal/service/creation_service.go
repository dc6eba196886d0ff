package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/charforge-api/internal/domain"
	"github.com/phrazzld/charforge-api/internal/generation"
	"github.com/phrazzld/charforge-api/internal/platform/logger"
	"github.com/phrazzld/charforge-api/internal/store"
)

// CreationResult is the outcome of a creation request: the creation
// itself plus provenance describing how it was produced.
type CreationResult struct {
	Creation *domain.Creation

	// FromCache is true when the creation was read back from the store
	// instead of being freshly generated.
	FromCache bool

	// FamilyUsed names the provider family that produced a fresh
	// creation. Empty on cache hits.
	FamilyUsed string

	// UsedFallback is true when the fallback family produced the result.
	UsedFallback bool
}

// CreationService orchestrates creation requests: cache lookup, prompt
// construction, generation, and caching of the result.
type CreationService interface {
	// Create returns the creation for a character, generating one when
	// none is cached. The cache is strictly advisory: cache failures are
	// logged and generation proceeds as if the cache were empty.
	Create(ctx context.Context, kind domain.ArtifactKind, profile domain.CharacterProfile) (*CreationResult, error)

	// GetCached returns the cached creation for a character without
	// generating. Returns store.ErrCreationNotFound when none exists.
	GetCached(ctx context.Context, characterID string) (*domain.Creation, error)
}

// creationServiceImpl implements the CreationService interface.
type creationServiceImpl struct {
	generator generation.Generator
	creations store.CreationStore
	logger    *slog.Logger
}

// NewCreationService creates a new CreationService. The creation store
// may be nil, in which case every request generates fresh and nothing is
// cached. The generator and logger are required.
func NewCreationService(
	generator generation.Generator,
	creations store.CreationStore,
	log *slog.Logger,
) (CreationService, error) {
	if generator == nil {
		return nil, NewCreationServiceError("init", "generator cannot be nil", nil)
	}
	if log == nil {
		return nil, NewCreationServiceError("init", "logger cannot be nil", nil)
	}

	return &creationServiceImpl{
		generator: generator,
		creations: creations,
		logger:    log.With(slog.String("component", "creation_service")),
	}, nil
}

// Create implements CreationService.Create.
func (s *creationServiceImpl) Create(
	ctx context.Context,
	kind domain.ArtifactKind,
	profile domain.CharacterProfile,
) (*CreationResult, error) {
	log := logger.FromContext(ctx)

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}
	if !domain.IsValidArtifactKind(kind) {
		return nil, fmt.Errorf("%w: unknown artifact kind %q", generation.ErrInvalidInput, kind)
	}

	characterID := profile.CharacterID()

	if cached := s.lookupCache(ctx, characterID); cached != nil {
		log.InfoContext(ctx, "serving cached creation",
			slog.String("character_id", characterID),
			slog.String("kind", string(cached.Artifact.Kind)))
		return &CreationResult{Creation: cached, FromCache: true}, nil
	}

	req, err := generation.NewGenerationRequest(kind, profile)
	if err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	creation, err := domain.NewCreation(characterID, profile.Name, result.Artifact, req.RawPrompt)
	if err != nil {
		return nil, NewCreationServiceError("create", "generated artifact failed validation", err)
	}

	s.cacheCreation(ctx, creation)

	log.InfoContext(ctx, "creation generated",
		slog.String("character_id", characterID),
		slog.String("kind", string(kind)),
		slog.String("family", result.FamilyUsed),
		slog.Bool("used_fallback", result.UsedFallback))

	return &CreationResult{
		Creation:     creation,
		FamilyUsed:   result.FamilyUsed,
		UsedFallback: result.UsedFallback,
	}, nil
}

// GetCached implements CreationService.GetCached.
func (s *creationServiceImpl) GetCached(
	ctx context.Context,
	characterID string,
) (*domain.Creation, error) {
	if characterID == "" {
		return nil, fmt.Errorf("%w: character ID cannot be empty", generation.ErrInvalidInput)
	}
	if s.creations == nil {
		return nil, store.ErrCreationNotFound
	}

	return s.creations.GetByCharacterID(ctx, characterID)
}

// lookupCache returns the cached creation or nil. Misses and store
// failures both read as nil: a broken cache must not fail the request.
func (s *creationServiceImpl) lookupCache(ctx context.Context, characterID string) *domain.Creation {
	if s.creations == nil {
		return nil
	}

	cached, err := s.creations.GetByCharacterID(ctx, characterID)
	if err != nil {
		if !errors.Is(err, store.ErrCreationNotFound) {
			s.logger.WarnContext(ctx, "cache lookup failed, generating fresh",
				slog.String("character_id", characterID),
				slog.String("error", err.Error()))
		}
		return nil
	}
	return cached
}

// cacheCreation stores a fresh creation, logging failures instead of
// surfacing them. The caller already holds a valid result.
func (s *creationServiceImpl) cacheCreation(ctx context.Context, creation *domain.Creation) {
	if s.creations == nil {
		return
	}

	if err := s.creations.Create(ctx, creation); err != nil {
		s.logger.WarnContext(ctx, "failed to cache creation",
			slog.String("character_id", creation.CharacterID),
			slog.String("error", err.Error()))
	}
}
