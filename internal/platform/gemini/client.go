package gemini

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
const FamilyName = "gemini"

// Configuration constants for the Gemini REST API.
const (
	// DefaultEndpoint is the base URL for the Gemini API.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	// maxResponseSize bounds response body reads. Inline image payloads
	// are large, so the cap is generous.
	maxResponseSize = 32 * 1024 * 1024

	// listPageSize asks discovery for one large page instead of paginating.
	listPageSize = 200
)

// Connection pooling reduces TCP handshake overhead across sequential
// candidate attempts against the same host.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// Client implements generation.ProviderFamily over the Gemini REST
// surface. One Client holds one credential; it is safe for concurrent use
// and all calls share the credential's rate-limit budget.
type Client struct {
	logger     *slog.Logger
	apiKey     string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Ensure Client implements the ProviderFamily interface
var _ generation.ProviderFamily = (*Client)(nil)

// New creates a Gemini provider family from the given configuration.
// Returns an ErrUnavailable-wrapped error when the credential is absent:
// the family is then unusable for the whole process lifetime.
func New(logger *slog.Logger, cfg config.ProviderConfig, requestsPerMinute int) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key not configured", generation.ErrUnavailable)
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
		logger:     logger.With(slog.String("component", "gemini_client")),
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
		return "gemini-2.0-flash"
	}
	return "imagen-3.0-generate-002"
}

// ListModels queries model discovery and returns the model identifiers
// with their "models/" resource prefix stripped.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/models?pageSize=%d", c.endpoint, listPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	body, err := c.send(req, "")
	if err != nil {
		return nil, err
	}

	var listed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	models := make([]string, 0, len(listed.Models))
	for _, m := range listed.Models {
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}

	c.logger.DebugContext(ctx, "listed available models", "count", len(models))
	return models, nil
}

// Invoke sends the prompt to the named model. Imagen models use the
// predict endpoint; everything else goes through generateContent, with
// image response modalities requested for image-capable model names.
func (c *Client) Invoke(ctx context.Context, modelID, prompt string) (*generation.RawResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var url string
	var payload any
	if strings.Contains(modelID, "imagen") {
		url = fmt.Sprintf("%s/models/%s:predict", c.endpoint, modelID)
		payload = predictRequest{
			Instances:  []predictInstance{{Prompt: prompt}},
			Parameters: predictParameters{SampleCount: 1},
		}
	} else {
		url = fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, modelID)
		body := generateContentRequest{
			Contents: []content{{Parts: []part{{Text: prompt}}}},
		}
		if strings.Contains(modelID, "image") {
			body.GenerationConfig = &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}}
		}
		payload = body
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
	// The credential travels in a header, never in the URL, so transport
	// errors cannot leak it.
	req.Header.Set("x-goog-api-key", c.apiKey)

	respBody, err := c.send(req, modelID)
	if err != nil {
		return nil, err
	}

	return &generation.RawResponse{Body: respBody}, nil
}

// send executes the request, bounds the body read, and converts non-2xx
// responses into *generation.APIError with the provider's own message.
func (c *Client) send(req *http.Request, modelID string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
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

// extractErrorMessage pulls the human-readable message out of a Gemini
// error body, falling back to the raw body when it has another shape.
func extractErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		if parsed.Error.Status != "" {
			return parsed.Error.Status + ": " + parsed.Error.Message
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

// Request body types for the two Gemini invocation styles.

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int `json:"sampleCount"`
}
