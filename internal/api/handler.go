package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/content-assistant/internal/filter"
	"github.com/af-corp/content-assistant/internal/generate"
	"github.com/af-corp/content-assistant/internal/httputil"
	"github.com/af-corp/content-assistant/internal/telemetry"
	"github.com/af-corp/content-assistant/internal/types"
	"github.com/af-corp/content-assistant/internal/upstream"
	"github.com/af-corp/content-assistant/internal/validate"
)

// Endpoint names used in logs, metrics and filter input.
const (
	EndpointGenerate   = "generate"
	EndpointImage      = "generate-image"
	EndpointPoll       = "generate-poll"
	EndpointNewsletter = "generate-newsletter"
)

// statusClientClosed is recorded when the caller went away before a reply.
const statusClientClosed = 499

const defaultMaxBodyBytes = 64 << 10

// Generator is the part of generate.Generator the handlers need.
type Generator interface {
	Generate(ctx context.Context, req types.ContentRequest) (types.GeneratedResult, error)
	GenerateNewsletter(ctx context.Context, req types.NewsletterRequest) (types.GeneratedResult, error)
	GenerateImage(ctx context.Context, prompt string) (types.GeneratedResult, error)
}

// Handler holds dependencies for the generation HTTP handlers.
type Handler struct {
	gen          Generator
	filterChain  *filter.Chain
	metrics      *telemetry.Metrics
	logger       *slog.Logger
	maxBodyBytes func() int64
}

// NewHandler wires the handlers. filterChain and metrics may be nil.
// maxBodyBytes is read per request so config reloads apply.
func NewHandler(gen Generator, filterChain *filter.Chain, metrics *telemetry.Metrics, logger *slog.Logger, maxBodyBytes func() int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodyBytes == nil {
		maxBodyBytes = func() int64 { return defaultMaxBodyBytes }
	}
	return &Handler{
		gen:          gen,
		filterChain:  filterChain,
		metrics:      metrics,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// call is a validated request ready to be screened and generated.
type call struct {
	kind  types.Kind
	input *filter.Input
	run   func(ctx context.Context) (types.GeneratedResult, error)
}

// Generate handles POST /api/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, EndpointGenerate, func(body []byte) (call, error) {
		req, err := validate.ValidateContent(body)
		if err != nil {
			return call{}, err
		}
		return call{
			kind:  req.Kind,
			input: filter.ContentInput(EndpointGenerate, req),
			run: func(ctx context.Context) (types.GeneratedResult, error) {
				return h.gen.Generate(ctx, req)
			},
		}, nil
	})
}

// GeneratePoll handles POST /api/generate-poll
func (h *Handler) GeneratePoll(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, EndpointPoll, func(body []byte) (call, error) {
		req, err := validate.ValidatePoll(body)
		if err != nil {
			return call{}, err
		}
		return call{
			kind:  req.Kind,
			input: filter.ContentInput(EndpointPoll, req),
			run: func(ctx context.Context) (types.GeneratedResult, error) {
				return h.gen.Generate(ctx, req)
			},
		}, nil
	})
}

// GenerateImage handles POST /api/generate-image
func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, EndpointImage, func(body []byte) (call, error) {
		req, err := validate.ValidateImage(body)
		if err != nil {
			return call{}, err
		}
		return call{
			kind:  "image",
			input: filter.ImageInput(EndpointImage, req),
			run: func(ctx context.Context) (types.GeneratedResult, error) {
				return h.gen.GenerateImage(ctx, req.Prompt)
			},
		}, nil
	})
}

// GenerateNewsletter handles POST /api/generate-newsletter
func (h *Handler) GenerateNewsletter(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, EndpointNewsletter, func(body []byte) (call, error) {
		req, err := validate.ValidateNewsletter(body)
		if err != nil {
			return call{}, err
		}
		return call{
			kind:  types.KindNewsletter,
			input: filter.NewsletterInput(EndpointNewsletter, req),
			run: func(ctx context.Context) (types.GeneratedResult, error) {
				return h.gen.GenerateNewsletter(ctx, req)
			},
		}, nil
	})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, endpoint string, prepare func(body []byte) (call, error)) {
	reqID := RequestIDFromContext(r.Context())
	start := time.Now()
	status := http.StatusOK
	var kind types.Kind
	defer func() {
		h.recordRequest(endpoint, kind, status, start)
	}()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
			httputil.WriteError(w, reqID, status, "Request body too large")
			return
		}
		status = http.StatusBadRequest
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	c, err := prepare(body)
	if err != nil {
		var verr *validate.ValidationError
		if errors.As(err, &verr) {
			h.logger.Info("request rejected by validation",
				"request_id", reqID,
				"endpoint", endpoint,
				"fields", verr.Fields(),
			)
			status = http.StatusBadRequest
			httputil.WriteValidationError(w, reqID, verr.Details())
			return
		}
		h.logger.Error("failed to prepare request", "request_id", reqID, "endpoint", endpoint, "error", err)
		status = http.StatusInternalServerError
		httputil.WriteInternalError(w, reqID, "Failed to process request")
		return
	}
	kind = c.kind

	if blocked := h.screen(r.Context(), reqID, c.input); blocked != nil {
		status = http.StatusUnprocessableEntity
		httputil.WriteContentBlockedError(w, reqID, blocked.Message)
		return
	}

	result, err := c.run(r.Context())
	if err != nil {
		status = h.writeGenerateError(w, r, reqID, endpoint, err)
		return
	}

	attrs := []any{
		"request_id", reqID,
		"endpoint", endpoint,
		"kind", string(kind),
		"duration_ms", time.Since(start).Milliseconds(),
		"status_code", status,
	}
	if result.Usage != nil {
		attrs = append(attrs,
			"prompt_tokens", result.Usage.PromptTokens,
			"completion_tokens", result.Usage.CompletionTokens,
			"total_tokens", result.Usage.TotalTokens,
		)
	}
	h.logger.Info("request completed", attrs...)

	httputil.WriteResult(w, reqID, result)
}

// screen runs the filter chain and returns the blocking result, if any.
func (h *Handler) screen(ctx context.Context, reqID string, in *filter.Input) *filter.Result {
	if h.filterChain == nil {
		return nil
	}
	results, blocked := h.filterChain.Run(ctx, in)
	if blocked != nil {
		h.logger.Warn("request blocked by filter",
			"request_id", reqID,
			"endpoint", in.Endpoint,
			"filter", blocked.FilterName,
			"detections", blocked.Detections,
			"score", blocked.Score,
			"fields", blocked.Fields,
		)
		if h.metrics != nil {
			h.metrics.RecordFilterAction(blocked.FilterName, string(blocked.Action))
		}
		return blocked
	}
	for _, fr := range results {
		if fr.Action != filter.ActionFlag {
			continue
		}
		h.logger.Info("request flagged by filter",
			"request_id", reqID,
			"filter", fr.FilterName,
			"score", fr.Score,
			"fields", fr.Fields,
		)
		if h.metrics != nil {
			h.metrics.RecordFilterAction(fr.FilterName, string(fr.Action))
		}
	}
	return nil
}

// writeGenerateError maps a generation failure to a response and returns the
// status written. Provider details stay in the logs.
func (h *Handler) writeGenerateError(w http.ResponseWriter, r *http.Request, reqID, endpoint string, err error) int {
	if r.Context().Err() != nil {
		h.logger.Info("client went away before generation finished",
			"request_id", reqID,
			"endpoint", endpoint,
			"error", err,
		)
		return statusClientClosed
	}

	var cfgErr *generate.ConfigurationError
	var upErr *generate.UpstreamError
	switch {
	case errors.As(err, &cfgErr):
		h.logger.Error("generation not configured", "request_id", reqID, "endpoint", endpoint, "error", err)
		msg := "Service is not configured: the upstream API credential is missing"
		if errors.Is(err, upstream.ErrImagesUnsupported) {
			msg = "Image generation is not available with the configured provider"
		}
		httputil.WriteInternalError(w, reqID, msg)
		return http.StatusInternalServerError
	case errors.As(err, &upErr):
		h.logger.Warn("upstream generation failed",
			"request_id", reqID,
			"endpoint", endpoint,
			"provider", upErr.Provider,
			"operation", upErr.Operation,
			"upstream_status", upErr.StatusCode,
			"error", upErr.Err,
		)
		httputil.WriteUpstreamError(w, reqID, "Content generation failed. Please try again later.")
		return http.StatusBadGateway
	default:
		h.logger.Error("generation failed", "request_id", reqID, "endpoint", endpoint, "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to generate content")
		return http.StatusInternalServerError
	}
}

func (h *Handler) recordRequest(endpoint string, kind types.Kind, status int, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordRequest(telemetry.RequestLabels{
		Endpoint:   endpoint,
		Kind:       string(kind),
		Status:     strconv.Itoa(status),
		DurationMs: float64(time.Since(start).Milliseconds()),
	})
}
