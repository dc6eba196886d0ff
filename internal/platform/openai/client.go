package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/phrazzld/charforge-api/internal/config"
	"github.com/phrazzld/charforge-api/internal/domain"
	"github.com/phrazzld/charforge-api/internal/generation"
)

// FamilyName identifies this family in logs and composed errors.
const FamilyName = "openai"

const (
	// DefaultEndpoint is the base URL for the OpenAI API.
	DefaultEndpoint = "https://api.openai.com/v1"

	maxResponseSize = 32 * 1024 * 1024
)

var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// Client implements generation.ProviderFamily over the OpenAI REST
// surface. It serves as the cross-family fallback when the primary
// family exhausts its candidates.
type Client struct {
	logger     *slog.Logger
	apiKey     string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ generation.ProviderFamily = (*Client)(nil)

// New creates an OpenAI provider family from the given configuration.
// Returns an ErrUnavailable-wrapped error when the credential is absent.
func New(logger *slog.Logger, cfg config.ProviderConfig, requestsPerMinute int) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key not configured", generation.ErrUnavailable)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}

	return &Client{
		logger:     logger.With(slog.String("component", "openai_client")),
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		httpClient: sharedHTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

// Name implements generation.ProviderFamily.
func (c *Client) Name() string { return FamilyName }

// DefaultModel implements generation.ProviderFamily.
func (c *Client) DefaultModel(kind domain.ArtifactKind) string {
	if kind == domain.ArtifactKindStory {
		return "gpt-4o-mini"
	}
	return "dall-e-3"
}

// ListModels queries model discovery. The fallback path only ever uses
// DefaultModel, but discovery keeps the family usable as a primary too.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, err := c.send(req, "")
	if err != nil {
		return nil, err
	}

	var listed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	models := make([]string, 0, len(listed.Data))
	for _, m := range listed.Data {
		models = append(models, m.ID)
	}

	c.logger.DebugContext(ctx, "listed available models", "count", len(models))
	return models, nil
}

// Invoke sends the prompt to the named model. Image-capable model names
// use the image generation endpoint with a base64 response so the result
// can be embedded directly; everything else goes through chat completions.
func (c *Client) Invoke(ctx context.Context, modelID, prompt string) (*generation.RawResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var url string
	var payload any
	if strings.Contains(modelID, "dall-e") || strings.Contains(modelID, "image") {
		url = c.endpoint + "/images/generations"
		payload = imageRequest{
			Model:          modelID,
			Prompt:         prompt,
			N:              1,
			ResponseFormat: "b64_json",
		}
	} else {
		url = c.endpoint + "/chat/completions"
		payload = chatRequest{
			Model:    modelID,
			Messages: []chatMessage{{Role: "user", Content: prompt}},
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoke request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, err := c.send(req, modelID)
	if err != nil {
		return nil, err
	}

	return &generation.RawResponse{Body: respBody}, nil
}

func (c *Client) send(req *http.Request, modelID string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read openai response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &generation.APIError{
			Family:     FamilyName,
			Model:      modelID,
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(body),
		}
	}

	return body, nil
}

func extractErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		if parsed.Error.Type != "" {
			return parsed.Error.Type + ": " + parsed.Error.Message
		}
		return parsed.Error.Message
	}

	const maxRawMessage = 300
	raw := string(body)
	if len(raw) > maxRawMessage {
		raw = raw[:maxRawMessage]
	}
	return raw
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}
