package generation

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/charforge-api/internal/domain"
)

// A shapeMatcher is a pure function that tries to read one known response
// shape out of a raw provider body. Matchers are applied in priority order;
// the first one to yield a non-empty artifact wins.
type shapeMatcher func(kind domain.ArtifactKind, body []byte) (*domain.GeneratedArtifact, bool)

// Matcher order per artifact kind, most specific first. Image kinds never
// accept a bare text completion, and story requests never accept image
// payloads, so a mismatched model response fails parsing instead of caching
// the wrong artifact type.
var (
	imageShapeMatchers = []shapeMatcher{
		matchInlineData,
		matchBase64ImageField,
		matchRemoteImageURL,
	}

	textShapeMatchers = []shapeMatcher{
		matchCandidateText,
		matchChatCompletionText,
	}
)

// ParseArtifact runs the shape matchers for the given kind against the raw
// body. Returns an ErrInvalidResponse-wrapped error when no known shape
// yields a non-empty artifact.
func ParseArtifact(kind domain.ArtifactKind, body []byte) (*domain.GeneratedArtifact, error) {
	matchers := imageShapeMatchers
	if kind == domain.ArtifactKindStory {
		matchers = textShapeMatchers
	}

	for _, match := range matchers {
		if artifact, ok := match(kind, body); ok {
			return artifact, nil
		}
	}

	return nil, fmt.Errorf("%w: no known shape matched %d-byte body", ErrInvalidResponse, len(body))
}

// matchInlineData reads the inline binary payload shape: a candidate part
// carrying base64 data alongside its mime type.
func matchInlineData(kind domain.ArtifactKind, body []byte) (*domain.GeneratedArtifact, bool) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					InlineData *struct {
						MimeType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			artifact := domain.NewImageArtifact(kind, dataURI(mime, part.InlineData.Data))
			return &artifact, true
		}
	}

	return nil, false
}

// matchBase64ImageField reads a base64-encoded image under the alternate
// field names providers use for prediction-style endpoints.
func matchBase64ImageField(kind domain.ArtifactKind, body []byte) (*domain.GeneratedArtifact, bool) {
	var resp struct {
		Predictions []struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			ImageBytes         string `json:"imageBytes"`
			MimeType           string `json:"mimeType"`
		} `json:"predictions"`
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}

	for _, pred := range resp.Predictions {
		encoded := pred.BytesBase64Encoded
		if encoded == "" {
			encoded = pred.ImageBytes
		}
		if encoded == "" {
			continue
		}
		mime := pred.MimeType
		if mime == "" {
			mime = "image/png"
		}
		artifact := domain.NewImageArtifact(kind, dataURI(mime, encoded))
		return &artifact, true
	}

	for _, item := range resp.Data {
		if item.B64JSON == "" {
			continue
		}
		artifact := domain.NewImageArtifact(kind, dataURI("image/png", item.B64JSON))
		return &artifact, true
	}

	return nil, false
}

// matchRemoteImageURL reads the hosted-image shape where the provider
// returns a URL instead of bytes.
func matchRemoteImageURL(kind domain.ArtifactKind, body []byte) (*domain.GeneratedArtifact, bool) {
	var resp struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}

	for _, item := range resp.Data {
		if item.URL != "" {
			artifact := domain.NewImageArtifact(kind, item.URL)
			return &artifact, true
		}
	}

	return nil, false
}

// matchCandidateText reads the plain text completion shape, concatenating
// all text parts of the first candidate.
func matchCandidateText(kind domain.ArtifactKind, body []byte) (*domain.GeneratedArtifact, bool) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}

	if len(resp.Candidates) == 0 {
		return nil, false
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	if text == "" {
		return nil, false
	}

	artifact := domain.NewTextArtifact(kind, text)
	return &artifact, true
}

// matchChatCompletionText reads the chat-completion shape used by the
// fallback family.
func matchChatCompletionText(kind domain.ArtifactKind, body []byte) (*domain.GeneratedArtifact, bool) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}

	for _, choice := range resp.Choices {
		if choice.Message.Content != "" {
			artifact := domain.NewTextArtifact(kind, choice.Message.Content)
			return &artifact, true
		}
	}

	return nil, false
}

func dataURI(mimeType, base64Data string) string {
	return "data:" + mimeType + ";base64," + base64Data
}
