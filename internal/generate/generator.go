// Package generate orchestrates one generation: derive the cache key, return
// a cached result if present, otherwise build the prompt, call the upstream
// provider, parse the reply and cache it.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/af-corp/content-assistant/internal/cache"
	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/parser"
	"github.com/af-corp/content-assistant/internal/prompt"
	"github.com/af-corp/content-assistant/internal/telemetry"
	"github.com/af-corp/content-assistant/internal/types"
	"github.com/af-corp/content-assistant/internal/upstream"
)

// newsletterMinTokens keeps long-form output from being cut off by the
// short-form max_tokens default.
const newsletterMinTokens = 2000

const defaultTimeout = 30 * time.Second

type backend struct {
	provider upstream.Provider
	cfg      config.UpstreamConfig
}

func (b *backend) timeout() time.Duration {
	if b.cfg.Timeout <= 0 {
		return defaultTimeout
	}
	return b.cfg.Timeout
}

// Generator is safe for concurrent use. Concurrent misses on the same key
// may each call upstream; the last write wins.
type Generator struct {
	store   cache.Store
	ttl     time.Duration
	metrics *telemetry.Metrics
	logger  *slog.Logger

	backend atomic.Pointer[backend]
}

// New creates a Generator. store must not be nil; use cache.Noop to disable
// caching. metrics may be nil.
func New(store cache.Store, ttl time.Duration, provider upstream.Provider, cfg config.UpstreamConfig, metrics *telemetry.Metrics, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
	g.SetUpstream(provider, cfg)
	return g
}

// SetUpstream swaps the provider and its settings. In-flight calls finish on
// the previous provider.
func (g *Generator) SetUpstream(provider upstream.Provider, cfg config.UpstreamConfig) {
	g.backend.Store(&backend{provider: provider, cfg: cfg})
}

// Generate produces post, thread or poll content for a validated request.
func (g *Generator) Generate(ctx context.Context, req types.ContentRequest) (types.GeneratedResult, error) {
	key, err := ContentKey(req)
	if err != nil {
		return types.GeneratedResult{}, err
	}
	return g.generateText(ctx, key, req.Kind, prompt.Build(req.Kind, req), 0)
}

// GenerateNewsletter produces a long-form newsletter issue.
func (g *Generator) GenerateNewsletter(ctx context.Context, req types.NewsletterRequest) (types.GeneratedResult, error) {
	key, err := NewsletterKey(req)
	if err != nil {
		return types.GeneratedResult{}, err
	}
	return g.generateText(ctx, key, types.KindNewsletter, prompt.BuildNewsletter(req), newsletterMinTokens)
}

// GenerateImage produces one image for prompt. Results are keyed by the
// prompt text alone.
func (g *Generator) GenerateImage(ctx context.Context, imagePrompt string) (types.GeneratedResult, error) {
	key := ImageKey(imagePrompt)
	if result, ok := g.lookup(ctx, key); ok {
		return result, nil
	}

	b := g.backend.Load()
	callCtx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()

	start := time.Now()
	url, err := b.provider.GenerateImage(callCtx, upstream.ImageRequest{
		Model:   b.cfg.ImageModel,
		Prompt:  imagePrompt,
		Count:   1,
		Size:    b.cfg.ImageSize,
		Quality: b.cfg.ImageQuality,
	})
	g.recordUpstream(b.provider.Name(), "image", start, err)
	if err != nil {
		return types.GeneratedResult{}, classify(b.provider.Name(), "image", err)
	}

	result := types.GeneratedResult{Success: true, ImageURL: url}
	g.save(ctx, key, result)
	return result, nil
}

func (g *Generator) generateText(ctx context.Context, key string, kind types.Kind, userPrompt string, minTokens int) (types.GeneratedResult, error) {
	if result, ok := g.lookup(ctx, key); ok {
		return result, nil
	}

	b := g.backend.Load()
	maxTokens := max(b.cfg.MaxTokens, minTokens)

	callCtx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()

	start := time.Now()
	resp, err := b.provider.Complete(callCtx, upstream.TextRequest{
		Model:             b.cfg.Model,
		SystemInstruction: prompt.SystemInstruction(kind),
		UserPrompt:        userPrompt,
		Temperature:       b.cfg.Temperature,
		MaxOutputTokens:   maxTokens,
	})
	g.recordUpstream(b.provider.Name(), "text", start, err)
	if err != nil {
		return types.GeneratedResult{}, classify(b.provider.Name(), "text", err)
	}

	result := parser.Parse(kind, resp.Text)
	result.Usage = resp.Usage
	if kind.Structured() && parser.Degraded(result) {
		g.logger.Warn("poll reply did not match expected shape",
			"question", result.Question,
			"options", len(result.Options),
		)
	}
	if resp.Usage != nil && g.metrics != nil {
		g.metrics.RecordTokens(string(kind), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}

	g.save(ctx, key, result)
	return result, nil
}

// lookup treats every cache failure as a miss.
func (g *Generator) lookup(ctx context.Context, key string) (types.GeneratedResult, bool) {
	data, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Warn("cache lookup failed", "key", key, "error", err)
		g.recordCache("get", "error")
		return types.GeneratedResult{}, false
	}
	if !ok {
		g.recordCache("get", "miss")
		return types.GeneratedResult{}, false
	}

	var result types.GeneratedResult
	if err := json.Unmarshal(data, &result); err != nil {
		g.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		g.recordCache("get", "error")
		return types.GeneratedResult{}, false
	}
	g.recordCache("get", "hit")
	return result, true
}

// save writes result unless the caller has already gone away.
func (g *Generator) save(ctx context.Context, key string, result types.GeneratedResult) {
	if ctx.Err() != nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		g.logger.Warn("encode cache entry", "key", key, "error", err)
		return
	}
	if err := g.store.Set(ctx, key, data, g.ttl); err != nil {
		g.logger.Warn("cache write failed", "key", key, "error", err)
		g.recordCache("set", "error")
		return
	}
	g.recordCache("set", "stored")
}

func (g *Generator) recordCache(operation, result string) {
	if g.metrics != nil {
		g.metrics.RecordCache(operation, result)
	}
}

func (g *Generator) recordUpstream(provider, operation string, start time.Time, err error) {
	if g.metrics == nil {
		return
	}
	g.metrics.RecordUpstream(provider, operation, float64(time.Since(start).Milliseconds()), failureReason(err))
}

func failureReason(err error) string {
	var se *upstream.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, upstream.ErrMissingCredential):
		return "credential"
	case errors.Is(err, upstream.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &se):
		return "status"
	default:
		return "error"
	}
}

func classify(provider, operation string, err error) error {
	if errors.Is(err, upstream.ErrMissingCredential) || errors.Is(err, upstream.ErrImagesUnsupported) {
		return &ConfigurationError{Err: err}
	}
	ue := &UpstreamError{Provider: provider, Operation: operation, Err: err}
	var se *upstream.StatusError
	if errors.As(err, &se) {
		ue.StatusCode = se.StatusCode
	}
	return ue
}
