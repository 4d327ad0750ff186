package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/lectio-ai/lectio/pkg/models"
	"github.com/lectio-ai/lectio/pkg/prompt"
)

// AnthropicName selects the Anthropic variant.
const AnthropicName = "Anthropic"

const anthropicVersion = "2023-06-01"

// AnthropicVariant speaks the /v1/messages format with x-api-key auth.
type AnthropicVariant struct {
	endpoint string
	model    string
}

// NewAnthropic returns the Anthropic variant.
func NewAnthropic(s Settings) *AnthropicVariant {
	v := &AnthropicVariant{
		endpoint: "https://api.anthropic.com/v1/messages",
		model:    "claude-3-haiku-20240307",
	}
	if s.Endpoint != "" {
		v.endpoint = s.Endpoint
	}
	if s.Model != "" {
		v.model = s.Model
	}
	return v
}

func (v *AnthropicVariant) Name() string     { return AnthropicName }
func (v *AnthropicVariant) Endpoint() string { return v.endpoint }
func (v *AnthropicVariant) Model() string    { return v.model }

// NewRequest implements Variant.
func (v *AnthropicVariant) NewRequest(ctx context.Context, userPrompt, apiKey string) (*http.Request, error) {
	payload, err := json.Marshal(models.AnthropicRequest{
		Model:       v.model,
		System:      prompt.SystemPersona,
		Messages:    []models.ChatMessage{{Role: "user", Content: userPrompt}},
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return req, nil
}

// ExtractText implements Variant. Text blocks of the content array are concatenated.
func (v *AnthropicVariant) ExtractText(body []byte) (string, error) {
	var resp models.AnthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var b strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		found = true
		b.WriteString(block.Text)
	}
	if !found {
		return "", fmt.Errorf("%w: no text content", ErrMalformedResponse)
	}
	return b.String(), nil
}
