package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio-ai/lectio/pkg/models"
	"github.com/lectio-ai/lectio/pkg/prompt"
)

const planText = "Day: Monday\nReading: Psalm 1\nNotes: Blessed is the one"

type captured struct {
	mu      sync.Mutex
	header  http.Header
	query   url.Values
	path    string
	payload map[string]any
}

func (c *captured) record(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header = r.Header.Clone()
	c.query = r.URL.Query()
	c.path = r.URL.Path
	c.payload = nil
	_ = json.NewDecoder(r.Body).Decode(&c.payload)
}

func newUpstream(t *testing.T, c *captured, respond func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		c.record(r)
		w.Header().Set("Content-Type", "application/json")
		respond(w)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func chatBody(text string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(models.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-3.5-turbo",
			Choices: []models.Choice{
				{Index: 0, Message: models.ChatMessage{Role: "assistant", Content: text}, FinishReason: "stop"},
			},
		})
	}
}

func TestChatVariantsGenerate(t *testing.T) {
	tests := []struct {
		name    string
		build   func(Settings) *ChatVariant
		model   string
		variant string
	}{
		{"openai", NewOpenAI, "gpt-3.5-turbo", OpenAIName},
		{"groq", NewGroq, "llama-3.1-8b-instant", GroqName},
		{"xai", NewXAI, "grok-beta", XAIName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c captured
			srv := newUpstream(t, &c, chatBody(planText))

			v := tt.build(Settings{Endpoint: srv.URL + "/v1/chat/completions"})
			client := NewClient(v, "sk-test", srv.Client(), nil)

			text, err := client.Generate(context.Background(), "make a plan")
			require.NoError(t, err)
			assert.Equal(t, planText, text)
			assert.Equal(t, tt.variant, client.Name())

			assert.Equal(t, "Bearer sk-test", c.header.Get("Authorization"))
			assert.Equal(t, "application/json", c.header.Get("Content-Type"))
			assert.Empty(t, c.query.Get("key"))
			assert.Equal(t, tt.model, c.payload["model"])
			assert.Equal(t, 0.7, c.payload["temperature"])
			assert.Equal(t, float64(800), c.payload["max_tokens"])

			msgs, ok := c.payload["messages"].([]any)
			require.True(t, ok)
			require.Len(t, msgs, 2)
			assert.Equal(t, map[string]any{"role": "system", "content": prompt.SystemPersona}, msgs[0])
			assert.Equal(t, map[string]any{"role": "user", "content": "make a plan"}, msgs[1])
		})
	}
}

func TestGeminiGenerate(t *testing.T) {
	var c captured
	srv := newUpstream(t, &c, func(w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(models.GeminiResponse{
			Candidates: []models.GeminiCandidate{{
				Content: models.GeminiContent{Role: "model", Parts: []models.GeminiPart{{Text: planText}}},
			}},
		})
	})

	v := NewGemini(Settings{Endpoint: srv.URL + "/v1beta/models/gemini-pro:generateContent"})
	client := NewClient(v, "g-key", srv.Client(), nil)

	text, err := client.Generate(context.Background(), "make a plan")
	require.NoError(t, err)
	assert.Equal(t, planText, text)

	assert.Equal(t, "g-key", c.query.Get("key"))
	assert.Empty(t, c.header.Get("Authorization"))
	assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", c.path)

	contents, ok := c.payload["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 1)
	assert.Equal(t, prompt.SystemPersona+"\n\nmake a plan", parts[0].(map[string]any)["text"])

	gen := c.payload["generationConfig"].(map[string]any)
	assert.Equal(t, 0.7, gen["temperature"])
	assert.Equal(t, float64(800), gen["maxOutputTokens"])
}

func TestGeminiModelOverride(t *testing.T) {
	v := NewGemini(Settings{Model: "gemini-1.5-flash"})

	assert.Equal(t, "gemini-1.5-flash", v.Model())
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent", v.Endpoint())
}

func TestGeminiKeyNotInEndpoint(t *testing.T) {
	v := NewGemini(Settings{})

	req, err := v.NewRequest(context.Background(), "p", "secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", req.URL.Query().Get("key"))
	assert.NotContains(t, v.Endpoint(), "secret")
}

func TestAnthropicGenerate(t *testing.T) {
	var c captured
	srv := newUpstream(t, &c, func(w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(models.AnthropicResponse{
			ID:    "msg_1",
			Model: "claude-3-haiku-20240307",
			Content: []models.AnthropicContent{
				{Type: "text", Text: "Day: Monday\n"},
				{Type: "tool_use"},
				{Type: "text", Text: "Reading: Psalm 1\nNotes: Blessed is the one"},
			},
			StopReason: "end_turn",
		})
	})

	v := NewAnthropic(Settings{Endpoint: srv.URL + "/v1/messages"})
	client := NewClient(v, "ant-key", srv.Client(), nil)

	text, err := client.Generate(context.Background(), "make a plan")
	require.NoError(t, err)
	assert.Equal(t, planText, text)

	assert.Equal(t, "ant-key", c.header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, c.header.Get("anthropic-version"))
	assert.Empty(t, c.header.Get("Authorization"))
	assert.Equal(t, prompt.SystemPersona, c.payload["system"])
}

func TestGenerateRateLimited(t *testing.T) {
	var c captured
	srv := newUpstream(t, &c, func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	})

	client := NewClient(NewOpenAI(Settings{Endpoint: srv.URL}), "sk", srv.Client(), nil)
	_, err := client.Generate(context.Background(), "p")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrTransport)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "slow down")
	assert.Equal(t, OpenAIName, upErr.Provider)
}

func TestGenerateServerError(t *testing.T) {
	var c captured
	srv := newUpstream(t, &c, func(w http.ResponseWriter) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := NewClient(NewGroq(Settings{Endpoint: srv.URL}), "sk", srv.Client(), nil)
	_, err := client.Generate(context.Background(), "p")

	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "500")
}

func TestGenerateErrorBodyTruncated(t *testing.T) {
	var c captured
	srv := newUpstream(t, &c, func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(strings.Repeat("x", 10*maxErrorBody)))
	})

	client := NewClient(NewOpenAI(Settings{Endpoint: srv.URL}), "sk", srv.Client(), nil)
	_, err := client.Generate(context.Background(), "p")

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Len(t, upErr.Body, maxErrorBody)
}

func TestGenerateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL + "/v1beta/models/gemini-pro:generateContent"
	srv.Close()

	client := NewClient(NewGemini(Settings{Endpoint: endpoint}), "very-secret-key", nil, nil)
	_, err := client.Generate(context.Background(), "p")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrUpstream)
	assert.NotContains(t, err.Error(), "very-secret-key")
}

func TestGenerateContextCanceled(t *testing.T) {
	var c captured
	srv := newUpstream(t, &c, chatBody(planText))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(NewOpenAI(Settings{Endpoint: srv.URL}), "sk", srv.Client(), nil)
	_, err := client.Generate(ctx, "p")

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateMalformed(t *testing.T) {
	tests := []struct {
		name    string
		variant func(string) Variant
		body    string
	}{
		{"chat not json", func(u string) Variant { return NewOpenAI(Settings{Endpoint: u}) }, `not json`},
		{"chat no choices", func(u string) Variant { return NewOpenAI(Settings{Endpoint: u}) }, `{"choices":[]}`},
		{"gemini no candidates", func(u string) Variant { return NewGemini(Settings{Endpoint: u}) }, `{"candidates":[]}`},
		{"gemini no parts", func(u string) Variant { return NewGemini(Settings{Endpoint: u}) }, `{"candidates":[{"content":{"parts":[]}}]}`},
		{"anthropic no text", func(u string) Variant { return NewAnthropic(Settings{Endpoint: u}) }, `{"content":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c captured
			body := tt.body
			srv := newUpstream(t, &c, func(w http.ResponseWriter) { _, _ = w.Write([]byte(body)) })

			client := NewClient(tt.variant(srv.URL), "k", srv.Client(), nil)
			_, err := client.Generate(context.Background(), "p")

			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestGenerateEmptyContentIsNotAnError(t *testing.T) {
	var c captured
	srv := newUpstream(t, &c, chatBody(""))

	client := NewClient(NewXAI(Settings{Endpoint: srv.URL}), "k", srv.Client(), nil)
	text, err := client.Generate(context.Background(), "p")

	require.NoError(t, err)
	assert.Empty(t, text)
}

// Two clients with different keys share one *http.Client; every request
// must carry only its own client's key.
func TestConcurrentClientsDoNotShareHeaders(t *testing.T) {
	var mismatches sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "Bearer key" + strings.TrimPrefix(r.URL.Path, "/")
		if got := r.Header.Get("Authorization"); got != want {
			mismatches.Store(fmt.Sprintf("%s:%s", r.URL.Path, got), true)
		}
		chatBody(planText)(w)
	}))
	defer srv.Close()

	shared := srv.Client()
	a := NewClient(NewOpenAI(Settings{Endpoint: srv.URL + "/A"}), "keyA", shared, nil)
	b := NewClient(NewGroq(Settings{Endpoint: srv.URL + "/B"}), "keyB", shared, nil)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		for _, c := range []*Client{a, b} {
			wg.Add(1)
			go func(c *Client) {
				defer wg.Done()
				_, err := c.Generate(context.Background(), "p")
				assert.NoError(t, err)
			}(c)
		}
	}
	wg.Wait()

	mismatches.Range(func(k, _ any) bool {
		t.Errorf("request carried foreign credentials: %v", k)
		return true
	})
}

func TestRegistryResolve(t *testing.T) {
	r := Builtin(nil)

	for _, name := range []string{OpenAIName, GroqName, XAIName, GeminiName, AnthropicName} {
		v, ok := r.Resolve(name)
		require.True(t, ok, name)
		assert.Equal(t, name, v.Name())
	}

	v, ok := r.Resolve("Mistral")
	assert.False(t, ok)
	assert.Equal(t, OpenAIName, v.Name())

	v, ok = r.Resolve("groq")
	assert.False(t, ok, "names are case-sensitive")
	assert.Equal(t, OpenAIName, v.Name())
}

func TestRegistryDefaults(t *testing.T) {
	r := Builtin(nil)
	want := map[string][2]string{
		OpenAIName:    {"https://api.openai.com/v1/chat/completions", "gpt-3.5-turbo"},
		GroqName:      {"https://api.groq.com/openai/v1/chat/completions", "llama-3.1-8b-instant"},
		XAIName:       {"https://api.x.ai/v1/chat/completions", "grok-beta"},
		GeminiName:    {"https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent", "gemini-pro"},
		AnthropicName: {"https://api.anthropic.com/v1/messages", "claude-3-haiku-20240307"},
	}

	variants := r.Variants()
	require.Len(t, variants, len(want))
	for _, v := range variants {
		assert.Equal(t, want[v.Name()][0], v.Endpoint(), v.Name())
		assert.Equal(t, want[v.Name()][1], v.Model(), v.Name())
	}
	assert.Equal(t, OpenAIName, variants[0].Name())
}

func TestRegistryOverridesAndRegister(t *testing.T) {
	r := Builtin(map[string]Settings{
		GroqName: {Model: "llama-3.3-70b-versatile"},
	})
	v, _ := r.Resolve(GroqName)
	assert.Equal(t, "llama-3.3-70b-versatile", v.Model())
	assert.Equal(t, "https://api.groq.com/openai/v1/chat/completions", v.Endpoint())

	r.Register(NewGroq(Settings{Endpoint: "http://localhost:9999"}))
	v, _ = r.Resolve(GroqName)
	assert.Equal(t, "http://localhost:9999", v.Endpoint())
	assert.Len(t, r.Variants(), 5)
}

func TestRegistryWithoutDefaultResolvesFirst(t *testing.T) {
	r := NewRegistry(NewGroq(Settings{}), NewXAI(Settings{}))

	v, ok := r.Resolve("Mistral")
	assert.False(t, ok)
	require.NotNil(t, v)
	assert.Equal(t, GroqName, v.Name())

	v, ok = NewRegistry().Resolve(OpenAIName)
	assert.False(t, ok)
	assert.Nil(t, v)
}
