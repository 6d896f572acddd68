package upstream

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/genai"

	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/types"
)

// Gemini serves text through Gemini models and images through Imagen. The
// SDK client is created on first use so a missing key surfaces per call.
type Gemini struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client

	mu     sync.Mutex
	client *genai.Client
}

func NewGemini(cfg config.UpstreamConfig, httpClient *http.Client) *Gemini {
	return &Gemini{cfg: cfg, httpClient: httpClient}
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) sdk(ctx context.Context) (*genai.Client, error) {
	if g.cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     g.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = g.cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *Gemini) Complete(ctx context.Context, req TextRequest) (TextResponse, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return TextResponse{}, err
	}

	result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.UserPrompt), geminiContentConfig(req))
	if err != nil {
		return TextResponse{}, fmt.Errorf("gemini generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return TextResponse{}, ErrEmptyResponse
	}
	return TextResponse{Text: text, Usage: geminiUsage(result.UsageMetadata)}, nil
}

func (g *Gemini) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", err
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}
	result, err := client.Models.GenerateImages(ctx, req.Model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate images: %w", err)
	}
	if len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil {
		return "", ErrEmptyResponse
	}
	return dataURL(result.GeneratedImages[0].Image), nil
}

func geminiContentConfig(req TextRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxOutputTokens),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return cfg
}

func geminiUsage(m *genai.GenerateContentResponseUsageMetadata) *types.Usage {
	if m == nil {
		return nil
	}
	return &types.Usage{
		PromptTokens:     int(m.PromptTokenCount),
		CompletionTokens: int(m.CandidatesTokenCount),
		TotalTokens:      int(m.TotalTokenCount),
	}
}

// dataURL inlines image bytes; Imagen returns bytes rather than hosted URLs.
func dataURL(img *genai.Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.ImageBytes)
}
