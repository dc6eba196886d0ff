package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/charforge-api/internal/domain"
)

func TestParseArtifactInlineData(t *testing.T) {
	t.Parallel()

	body := []byte(`{"candidates":[{"content":{"parts":[
		{"text":"here is your image"},
		{"inlineData":{"mimeType":"image/webp","data":"Zm9v"}}
	]}}]}`)

	artifact, err := ParseArtifact(domain.ArtifactKindImage, body)
	require.NoError(t, err)
	assert.Equal(t, "data:image/webp;base64,Zm9v", artifact.ImageURI)
	assert.Empty(t, artifact.Text)
}

func TestParseArtifactBase64AlternateFieldNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bytesBase64Encoded",
			body: `{"predictions":[{"bytesBase64Encoded":"Zm9v","mimeType":"image/png"}]}`,
			want: "data:image/png;base64,Zm9v",
		},
		{
			name: "imageBytes",
			body: `{"predictions":[{"imageBytes":"YmFy"}]}`,
			want: "data:image/png;base64,YmFy",
		},
		{
			name: "b64_json",
			body: `{"data":[{"b64_json":"YmF6"}]}`,
			want: "data:image/png;base64,YmF6",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			artifact, err := ParseArtifact(domain.ArtifactKindSketch, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, artifact.ImageURI)
		})
	}
}

func TestParseArtifactRemoteURL(t *testing.T) {
	t.Parallel()

	body := []byte(`{"data":[{"url":"https://images.example.com/out/1.png"}]}`)

	artifact, err := ParseArtifact(domain.ArtifactKindImage, body)
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/out/1.png", artifact.ImageURI)
}

func TestParseArtifactStoryText(t *testing.T) {
	t.Parallel()

	body := []byte(`{"candidates":[{"content":{"parts":[{"text":"A long time "},{"text":"ago..."}]}}]}`)

	artifact, err := ParseArtifact(domain.ArtifactKindStory, body)
	require.NoError(t, err)
	assert.Equal(t, "A long time ago...", artifact.Text)
	assert.False(t, artifact.IsImage())
}

func TestParseArtifactChatCompletionText(t *testing.T) {
	t.Parallel()

	body := []byte(`{"choices":[{"message":{"content":"Once upon a time."}}]}`)

	artifact, err := ParseArtifact(domain.ArtifactKindStory, body)
	require.NoError(t, err)
	assert.Equal(t, "Once upon a time.", artifact.Text)
}

func TestParseArtifactImageRequestRejectsTextOnlyBody(t *testing.T) {
	t.Parallel()

	// A model answering an image prompt with prose must not produce an
	// image artifact; the driver treats it as a failed attempt instead.
	body := []byte(`{"candidates":[{"content":{"parts":[{"text":"I cannot draw that"}]}}]}`)

	_, err := ParseArtifact(domain.ArtifactKindImage, body)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestParseArtifactInlineDataWinsOverBase64Fields(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"Zmlyc3Q="}}]}}],
		"predictions":[{"bytesBase64Encoded":"c2Vjb25k"}]
	}`)

	artifact, err := ParseArtifact(domain.ArtifactKindImage, body)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,Zmlyc3Q=", artifact.ImageURI)
}

func TestParseArtifactNoKnownShape(t *testing.T) {
	t.Parallel()

	_, err := ParseArtifact(domain.ArtifactKindStory, []byte(`{"status":"ok"}`))
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = ParseArtifact(domain.ArtifactKindImage, []byte(`not json at all`))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
