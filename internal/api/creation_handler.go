package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/charforge-api/internal/api/shared"
	"github.com/phrazzld/charforge-api/internal/domain"
	"github.com/phrazzld/charforge-api/internal/platform/logger"
	"github.com/phrazzld/charforge-api/internal/service"
)

// CharacterPayload is the wire form of a character description.
type CharacterPayload struct {
	Name         string            `json:"name"          validate:"required"`
	ReferenceURL string            `json:"reference_url,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// CreateCreationRequest is the request body for POST /api/creations.
type CreateCreationRequest struct {
	Kind      string           `json:"kind"      validate:"required,oneof=image story sketch"`
	Character CharacterPayload `json:"character" validate:"required"`
}

// CreationResponse is the wire form of a creation, fresh or cached.
type CreationResponse struct {
	ID            string    `json:"id"`
	CharacterID   string    `json:"character_id"`
	CharacterName string    `json:"character_name"`
	Kind          string    `json:"kind"`
	ImageURI      string    `json:"image_uri,omitempty"`
	Text          string    `json:"text,omitempty"`
	PromptUsed    string    `json:"prompt_used"`
	FromCache     bool      `json:"from_cache"`
	FamilyUsed    string    `json:"family_used,omitempty"`
	UsedFallback  bool      `json:"used_fallback_family,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreationHandler handles creation-related HTTP requests.
type CreationHandler struct {
	creationService service.CreationService
	logger          *slog.Logger
}

// NewCreationHandler creates a new CreationHandler.
func NewCreationHandler(
	creationService service.CreationService,
	log *slog.Logger,
) *CreationHandler {
	if creationService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("creationService cannot be nil for CreationHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CreationHandler")
	}

	return &CreationHandler{
		creationService: creationService,
		logger:          log.With(slog.String("component", "creation_handler")),
	}
}

// CreateCreation handles POST /api/creations requests. It returns 201 for
// a freshly generated creation and 200 when the cached one is served.
func (h *CreationHandler) CreateCreation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateCreationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode creation request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("creation request failed validation", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: kind must be image, story, or sketch, and character.name is required")
		return
	}

	profile := domain.CharacterProfile{
		Name:         req.Character.Name,
		ReferenceURL: req.Character.ReferenceURL,
		Attributes:   req.Character.Attributes,
	}

	result, err := h.creationService.Create(r.Context(), domain.ArtifactKind(req.Kind), profile)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r,
			statusCode, GetSafeErrorMessage(err), GetRemediationHint(err), err)
		return
	}

	status := http.StatusCreated
	if result.FromCache {
		status = http.StatusOK
	}

	log.Debug("creation request served",
		slog.String("character_id", result.Creation.CharacterID),
		slog.Bool("from_cache", result.FromCache))
	shared.RespondWithJSON(w, r, status, creationResultToResponse(result))
}

// GetCreation handles GET /api/characters/{characterID}/creation requests.
// It only reads the cache and never triggers generation.
func (h *CreationHandler) GetCreation(w http.ResponseWriter, r *http.Request) {
	characterID := chi.URLParam(r, "characterID")

	creation, err := h.creationService.GetCached(r.Context(), characterID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), "", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, creationToResponse(creation, true))
}

func creationResultToResponse(result *service.CreationResult) CreationResponse {
	resp := creationToResponse(result.Creation, result.FromCache)
	resp.FamilyUsed = result.FamilyUsed
	resp.UsedFallback = result.UsedFallback
	return resp
}

func creationToResponse(creation *domain.Creation, fromCache bool) CreationResponse {
	return CreationResponse{
		ID:            creation.ID.String(),
		CharacterID:   creation.CharacterID,
		CharacterName: creation.CharacterName,
		Kind:          string(creation.Artifact.Kind),
		ImageURI:      creation.Artifact.ImageURI,
		Text:          creation.Artifact.Text,
		PromptUsed:    creation.PromptUsed,
		FromCache:     fromCache,
		CreatedAt:     creation.CreatedAt,
	}
}
