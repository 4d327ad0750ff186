// Package provider adapts the wire formats of hosted language-model APIs
// behind a single Generate call.
//
// Each backend is a Variant that knows its endpoint, how to shape the
// request body, where credentials go, and where the generated text lives in
// the response. A Client executes a variant over a shared *http.Client;
// credentials are always set on the outgoing request, never on the client.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Sampling settings shared by every variant.
const (
	Temperature = 0.7
	MaxTokens   = 800
)

const maxErrorBody = 2048

var (
	// ErrTransport is returned when the request could not be sent or the response not read.
	ErrTransport = errors.New("provider transport failure")
	// ErrUpstream is returned when the provider answers with a non-success status.
	ErrUpstream = errors.New("provider upstream failure")
	// ErrRateLimited is the 429 case of ErrUpstream.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrMalformedResponse is returned when the response lacks the expected text field.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Variant is one provider's request and response shape.
type Variant interface {
	// Name is the configuration name that selects the variant.
	Name() string
	// Endpoint is the URL requests are posted to, without credentials.
	Endpoint() string
	// Model is the model the variant asks for.
	Model() string
	// NewRequest builds a fresh request carrying prompt and apiKey.
	NewRequest(ctx context.Context, prompt, apiKey string) (*http.Request, error)
	// ExtractText pulls the generated text out of a successful response body.
	ExtractText(body []byte) (string, error)
}

// UpstreamError describes a non-success HTTP status from a provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Is matches ErrUpstream for every status and ErrRateLimited for 429.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return true
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// Client calls one variant with one API key.
type Client struct {
	variant    Variant
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient and a nil logger discards output.
func NewClient(v Variant, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		variant:    v,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Name returns the provider name of the underlying variant.
func (c *Client) Name() string {
	return c.variant.Name()
}

// Generate sends prompt to the provider and returns the raw generated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	name := c.variant.Name()

	req, err := c.variant.NewRequest(ctx, prompt, c.apiKey)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", name, err)
	}

	c.logger.Info("calling provider",
		zap.String("provider", name),
		zap.String("endpoint", c.variant.Endpoint()),
		zap.String("model", c.variant.Model()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTransport, name, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &UpstreamError{
			Provider:   name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: read response: %w", ErrTransport, name, err)
	}

	text, err := c.variant.ExtractText(body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return text, nil
}

// stripURL drops the request URL from transport errors; some variants carry
// the API key in the query string.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
