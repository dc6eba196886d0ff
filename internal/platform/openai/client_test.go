package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/charforge-api/internal/config"
	"github.com/phrazzld/charforge-api/internal/domain"
	"github.com/phrazzld/charforge-api/internal/generation"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(slog.Default(), config.ProviderConfig{
		APIKey:   "test-key",
		Endpoint: srv.URL,
	}, 0)
	require.NoError(t, err)
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := New(slog.Default(), config.ProviderConfig{}, 0)
	assert.ErrorIs(t, err, generation.ErrUnavailable)
}

func TestInvokeChatCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "a prompt", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a story"}}]}`))
	})

	resp, err := client.Invoke(context.Background(), "gpt-4o-mini", "a prompt")
	require.NoError(t, err)

	artifact, err := generation.ParseArtifact(domain.ArtifactKindStory, resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "a story", artifact.Text)
}

func TestInvokeImageModelUsesImageEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)

		var req imageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dall-e-3", req.Model)
		assert.Equal(t, "b64_json", req.ResponseFormat)
		assert.Equal(t, 1, req.N)

		_, _ = w.Write([]byte(`{"data":[{"b64_json":"Zm9v"}]}`))
	})

	resp, err := client.Invoke(context.Background(), "dall-e-3", "draw")
	require.NoError(t, err)

	artifact, err := generation.ParseArtifact(domain.ArtifactKindImage, resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,Zm9v", artifact.ImageURI)
}

func TestListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4o-mini"},{"id":"dall-e-3"}]}`))
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o-mini", "dall-e-3"}, models)
}

func TestInvokeRateLimitErrorClassifiesTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	})

	_, err := client.Invoke(context.Background(), "gpt-4o-mini", "a prompt")

	var apiErr *generation.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, FamilyName, apiErr.Family)
	assert.Equal(t, generation.OutcomeTransient, generation.ClassifyError(err))
}

func TestDefaultModelPerKind(t *testing.T) {
	t.Parallel()

	client := &Client{}
	assert.Equal(t, "gpt-4o-mini", client.DefaultModel(domain.ArtifactKindStory))
	assert.Equal(t, "dall-e-3", client.DefaultModel(domain.ArtifactKindImage))
	assert.Equal(t, "dall-e-3", client.DefaultModel(domain.ArtifactKindSketch))
}
