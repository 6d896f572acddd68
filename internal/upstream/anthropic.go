package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/types"
)

const anthropicVersion = "2023-06-01"

// Anthropic talks to the Messages API. It has no image endpoint.
type Anthropic struct {
	cfg    config.UpstreamConfig
	client *http.Client
}

func NewAnthropic(cfg config.UpstreamConfig, client *http.Client) *Anthropic {
	return &Anthropic{cfg: cfg, client: client}
}

func (a *Anthropic) Name() string { return ProviderAnthropic }

func (a *Anthropic) Complete(ctx context.Context, req TextRequest) (TextResponse, error) {
	if a.cfg.APIKey == "" {
		return TextResponse{}, ErrMissingCredential
	}

	body := anthropicRequest{
		Model:       req.Model,
		System:      req.SystemInstruction,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
		MaxTokens:   req.MaxOutputTokens,
		Temperature: req.Temperature,
	}
	// Anthropic requires max_tokens
	if body.MaxTokens <= 0 {
		body.MaxTokens = 4096
	}

	data, err := json.Marshal(body)
	if err != nil {
		return TextResponse{}, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return TextResponse{}, fmt.Errorf("create http request: %w", err)
	}
	setHeaders(httpReq, a.cfg.Headers)
	httpReq.Header.Set("x-api-key", a.cfg.APIKey)
	if httpReq.Header.Get("anthropic-version") == "" {
		httpReq.Header.Set("anthropic-version", anthropicVersion)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return TextResponse{}, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return TextResponse{}, fmt.Errorf("read anthropic response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return TextResponse{}, &StatusError{Provider: ProviderAnthropic, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var antResp anthropicResponse
	if err := json.Unmarshal(respBody, &antResp); err != nil {
		return TextResponse{}, fmt.Errorf("unmarshal anthropic response: %w", err)
	}

	var text string
	found := false
	for _, block := range antResp.Content {
		if block.Type == "text" {
			text = block.Text
			found = true
			break
		}
	}
	if !found {
		return TextResponse{}, ErrEmptyResponse
	}

	return TextResponse{
		Text: text,
		Usage: &types.Usage{
			PromptTokens:     antResp.Usage.InputTokens,
			CompletionTokens: antResp.Usage.OutputTokens,
			TotalTokens:      antResp.Usage.InputTokens + antResp.Usage.OutputTokens,
		},
	}, nil
}

func (a *Anthropic) GenerateImage(context.Context, ImageRequest) (string, error) {
	return "", ErrImagesUnsupported
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
