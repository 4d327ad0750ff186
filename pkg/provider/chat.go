package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lectio-ai/lectio/pkg/models"
	"github.com/lectio-ai/lectio/pkg/prompt"
)

// Chat-completions providers.
const (
	OpenAIName = "OpenAI"
	GroqName   = "Groq"
	XAIName    = "xAI"
)

// Settings overrides a variant's default endpoint or model. Empty fields keep the default.
type Settings struct {
	Endpoint string
	Model    string
}

// ChatVariant speaks the OpenAI chat-completions format with bearer auth.
type ChatVariant struct {
	name     string
	endpoint string
	model    string
}

// NewOpenAI returns the OpenAI variant.
func NewOpenAI(s Settings) *ChatVariant {
	return newChat(OpenAIName, "https://api.openai.com/v1/chat/completions", "gpt-3.5-turbo", s)
}

// NewGroq returns the Groq variant.
func NewGroq(s Settings) *ChatVariant {
	return newChat(GroqName, "https://api.groq.com/openai/v1/chat/completions", "llama-3.1-8b-instant", s)
}

// NewXAI returns the xAI (Grok) variant.
func NewXAI(s Settings) *ChatVariant {
	return newChat(XAIName, "https://api.x.ai/v1/chat/completions", "grok-beta", s)
}

func newChat(name, endpoint, model string, s Settings) *ChatVariant {
	if s.Endpoint != "" {
		endpoint = s.Endpoint
	}
	if s.Model != "" {
		model = s.Model
	}
	return &ChatVariant{name: name, endpoint: endpoint, model: model}
}

func (v *ChatVariant) Name() string     { return v.name }
func (v *ChatVariant) Endpoint() string { return v.endpoint }
func (v *ChatVariant) Model() string    { return v.model }

// NewRequest implements Variant.
func (v *ChatVariant) NewRequest(ctx context.Context, userPrompt, apiKey string) (*http.Request, error) {
	payload, err := json.Marshal(models.ChatCompletionRequest{
		Model: v.model,
		Messages: []models.ChatMessage{
			{Role: "system", Content: prompt.SystemPersona},
			{Role: "user", Content: userPrompt},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req, nil
}

// ExtractText implements Variant. The text lives at choices[0].message.content.
func (v *ChatVariant) ExtractText(body []byte) (string, error) {
	var resp models.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
