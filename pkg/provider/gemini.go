package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lectio-ai/lectio/pkg/models"
	"github.com/lectio-ai/lectio/pkg/prompt"
)

// GeminiName selects the Gemini variant.
const GeminiName = "Gemini"

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/models/"
	geminiDefaultModel = "gemini-pro"
)

// GeminiVariant speaks the generateContent format. The API key travels in
// the key query parameter and the persona is folded into the single user part.
type GeminiVariant struct {
	endpoint string
	model    string
}

// NewGemini returns the Gemini variant. A model override without an
// endpoint override rewrites the default endpoint for that model.
func NewGemini(s Settings) *GeminiVariant {
	model := geminiDefaultModel
	if s.Model != "" {
		model = s.Model
	}
	endpoint := geminiBaseURL + model + ":generateContent"
	if s.Endpoint != "" {
		endpoint = s.Endpoint
	}
	return &GeminiVariant{endpoint: endpoint, model: model}
}

func (v *GeminiVariant) Name() string     { return GeminiName }
func (v *GeminiVariant) Endpoint() string { return v.endpoint }
func (v *GeminiVariant) Model() string    { return v.model }

// NewRequest implements Variant.
func (v *GeminiVariant) NewRequest(ctx context.Context, userPrompt, apiKey string) (*http.Request, error) {
	payload, err := json.Marshal(models.GeminiRequest{
		Contents: []models.GeminiContent{{
			Parts: []models.GeminiPart{{Text: prompt.SystemPersona + "\n\n" + userPrompt}},
		}},
		GenerationConfig: models.GeminiGenerationConfig{
			Temperature:     Temperature,
			MaxOutputTokens: MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	target, err := url.Parse(v.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := target.Query()
	q.Set("key", apiKey)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// ExtractText implements Variant. The text lives at candidates[0].content.parts[0].text.
func (v *GeminiVariant) ExtractText(body []byte) (string, error) {
	var resp models.GeminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: candidate has no parts", ErrMalformedResponse)
	}
	return parts[0].Text, nil
}
