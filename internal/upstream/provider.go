// Package upstream talks to the language model providers. Each adapter maps
// the neutral TextRequest/ImageRequest onto one provider's wire format.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/types"
)

var (
	// ErrMissingCredential is returned on every call when no API key is
	// configured. It is not a startup failure.
	ErrMissingCredential = errors.New("upstream api key is not configured")
	// ErrImagesUnsupported is returned by providers without an image API.
	ErrImagesUnsupported = errors.New("provider does not support image generation")
	// ErrEmptyResponse means the provider answered 2xx without usable output.
	ErrEmptyResponse = errors.New("provider returned no output")
)

// StatusError is a non-2xx answer from a provider. Body is kept for logs and
// never shown to end users.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// TextRequest is a single-turn chat completion.
type TextRequest struct {
	Model             string
	SystemInstruction string
	UserPrompt        string
	Temperature       float64
	MaxOutputTokens   int
}

// TextResponse is the first completion choice and its token usage.
type TextResponse struct {
	Text  string
	Usage *types.Usage
}

// ImageRequest asks for generated images. Size and Quality are passed through
// to providers that understand them.
type ImageRequest struct {
	Model   string
	Prompt  string
	Count   int
	Size    string
	Quality string
}

type TextGenerator interface {
	Complete(ctx context.Context, req TextRequest) (TextResponse, error)
}

type ImageGenerator interface {
	// GenerateImage returns the URL of the first generated image.
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// Provider is a configured upstream.
type Provider interface {
	TextGenerator
	ImageGenerator
	Name() string
}

// Provider names accepted in upstream.provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var defaultBaseURLs = map[string]string{
	ProviderOpenAI:    "https://api.openai.com/v1",
	ProviderAnthropic: "https://api.anthropic.com/v1",
}

// BuildFromConfig builds the configured provider, wrapped in the tracker's
// circuit breaker when one is given.
func BuildFromConfig(cfg config.UpstreamConfig, tracker *HealthTracker) (Provider, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURLs[cfg.Provider]
	}
	client := newHTTPClient(cfg.Timeout)

	var p Provider
	switch cfg.Provider {
	case ProviderOpenAI:
		p = NewOpenAI(cfg, client)
	case ProviderAnthropic:
		p = NewAnthropic(cfg, client)
	case ProviderGemini:
		p = NewGemini(cfg, client)
	default:
		return nil, fmt.Errorf("unknown upstream provider %q", cfg.Provider)
	}

	if tracker != nil {
		p = Guard(p, tracker)
	}
	return p, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        32,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

func setHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
}
