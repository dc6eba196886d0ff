package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/charforge-api/internal/domain"
	"github.com/phrazzld/charforge-api/internal/generation"
	"github.com/phrazzld/charforge-api/internal/service"
	"github.com/phrazzld/charforge-api/internal/store"
)

// stubCreationService returns scripted results for handler tests.
type stubCreationService struct {
	createResult *service.CreationResult
	createErr    error
	cached       *domain.Creation
	cachedErr    error
}

func (s *stubCreationService) Create(
	ctx context.Context,
	kind domain.ArtifactKind,
	profile domain.CharacterProfile,
) (*service.CreationResult, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createResult, nil
}

func (s *stubCreationService) GetCached(
	ctx context.Context,
	characterID string,
) (*domain.Creation, error) {
	if s.cachedErr != nil {
		return nil, s.cachedErr
	}
	return s.cached, nil
}

func freshResult(t *testing.T) *service.CreationResult {
	t.Helper()

	creation, err := domain.NewCreation(
		"leia-organa",
		"Leia Organa",
		domain.NewImageArtifact(domain.ArtifactKindImage, "data:image/png;base64,Zm9v"),
		"a portrait prompt",
	)
	require.NoError(t, err)
	return &service.CreationResult{Creation: creation, FamilyUsed: "gemini"}
}

func newRouter(svc service.CreationService) http.Handler {
	h := NewCreationHandler(svc, slog.Default())
	r := chi.NewRouter()
	r.Post("/api/creations", h.CreateCreation)
	r.Get("/api/characters/{characterID}/creation", h.GetCreation)
	return r
}

func postCreation(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/creations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateCreationFreshReturns201(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubCreationService{createResult: freshResult(t)})

	rec := postCreation(t, router, `{"kind":"image","character":{"name":"Leia Organa"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "leia-organa", resp.CharacterID)
	assert.Equal(t, "image", resp.Kind)
	assert.Equal(t, "gemini", resp.FamilyUsed)
	assert.False(t, resp.FromCache)
	assert.False(t, resp.UsedFallback)
}

func TestCreateCreationCachedReturns200(t *testing.T) {
	t.Parallel()

	result := freshResult(t)
	result.FromCache = true
	result.FamilyUsed = ""
	router := newRouter(&stubCreationService{createResult: result})

	rec := postCreation(t, router, `{"kind":"image","character":{"name":"Leia Organa"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CreationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.FromCache)
	assert.Empty(t, resp.FamilyUsed)
}

func TestCreateCreationRejectsBadBodies(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubCreationService{createResult: freshResult(t)})

	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"unknown kind", `{"kind":"poem","character":{"name":"Leia"}}`},
		{"missing name", `{"kind":"image","character":{}}`},
		{"missing character", `{"kind":"image"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := postCreation(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateCreationExhaustedReturns502WithHint(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubCreationService{createErr: &generation.ExhaustedError{
		Primary:  "status 429",
		Fallback: "status 429",
		Hint:     "both providers report exhausted quota; wait a few minutes and retry",
	}})

	rec := postCreation(t, router, `{"kind":"story","character":{"name":"Leia Organa"}}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["hint"], "wait a few minutes")
	assert.NotContains(t, resp["error"], "429", "raw provider detail stays out of the client message")
}

func TestCreateCreationInvalidInputReturns400(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubCreationService{createErr: generation.ErrInvalidInput})

	rec := postCreation(t, router, `{"kind":"image","character":{"name":"Leia Organa"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCreationFound(t *testing.T) {
	t.Parallel()

	result := freshResult(t)
	router := newRouter(&stubCreationService{cached: result.Creation})

	req := httptest.NewRequest(http.MethodGet, "/api/characters/leia-organa/creation", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CreationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "leia-organa", resp.CharacterID)
	assert.True(t, resp.FromCache)
}

func TestGetCreationMissingReturns404(t *testing.T) {
	t.Parallel()

	router := newRouter(&stubCreationService{cachedErr: store.ErrCreationNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/characters/unknown/creation", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
