package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without contacting the provider while its
// breaker is open.
var ErrCircuitOpen = errors.New("upstream circuit open")

// HealthTracker keeps one circuit breaker per provider name. Breaker state
// outlives provider rebuilds on config reload.
type HealthTracker struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker

	failureThreshold      int
	recoveryProbeInterval time.Duration
}

// NewHealthTracker creates a health tracker with the given circuit breaker config.
func NewHealthTracker(failureThreshold int, recoveryProbeInterval time.Duration) *HealthTracker {
	return &HealthTracker{
		breakers:              make(map[string]*CircuitBreaker),
		failureThreshold:      failureThreshold,
		recoveryProbeInterval: recoveryProbeInterval,
	}
}

// GetBreaker returns (or lazily creates) the circuit breaker for a provider.
func (ht *HealthTracker) GetBreaker(provider string) *CircuitBreaker {
	ht.mu.RLock()
	cb, ok := ht.breakers[provider]
	ht.mu.RUnlock()
	if ok {
		return cb
	}

	ht.mu.Lock()
	defer ht.mu.Unlock()
	// Double-check after acquiring write lock
	if cb, ok := ht.breakers[provider]; ok {
		return cb
	}
	cb = NewCircuitBreaker(ht.failureThreshold, ht.recoveryProbeInterval)
	ht.breakers[provider] = cb
	return cb
}

// IsAvailable returns true if the provider's circuit breaker allows requests.
func (ht *HealthTracker) IsAvailable(provider string) bool {
	return ht.GetBreaker(provider).Allow()
}

// RecordSuccess records a successful request for the provider.
func (ht *HealthTracker) RecordSuccess(provider string) {
	ht.GetBreaker(provider).RecordSuccess()
}

// RecordFailure records a failed request for the provider.
func (ht *HealthTracker) RecordFailure(provider string) {
	ht.GetBreaker(provider).RecordFailure()
}

// States reports every known breaker's state, for /health.
func (ht *HealthTracker) States() map[string]string {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	out := make(map[string]string, len(ht.breakers))
	for name, cb := range ht.breakers {
		out[name] = cb.State().String()
	}
	return out
}

type guarded struct {
	next    Provider
	tracker *HealthTracker
}

// Guard fails calls fast with ErrCircuitOpen while p's breaker is open. Calls
// are never retried.
func Guard(p Provider, tracker *HealthTracker) Provider {
	return &guarded{next: p, tracker: tracker}
}

func (g *guarded) Name() string { return g.next.Name() }

func (g *guarded) Complete(ctx context.Context, req TextRequest) (TextResponse, error) {
	if !g.tracker.IsAvailable(g.next.Name()) {
		return TextResponse{}, fmt.Errorf("%s: %w", g.next.Name(), ErrCircuitOpen)
	}
	resp, err := g.next.Complete(ctx, req)
	g.record(err)
	return resp, err
}

func (g *guarded) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	if !g.tracker.IsAvailable(g.next.Name()) {
		return "", fmt.Errorf("%s: %w", g.next.Name(), ErrCircuitOpen)
	}
	url, err := g.next.GenerateImage(ctx, req)
	g.record(err)
	return url, err
}

func (g *guarded) record(err error) {
	switch {
	case err == nil:
		g.tracker.RecordSuccess(g.next.Name())
	case countsAsFailure(err):
		g.tracker.RecordFailure(g.next.Name())
	default:
		// Not the provider's fault; release a pending half-open probe.
		g.tracker.GetBreaker(g.next.Name()).releaseProbe()
	}
}

// countsAsFailure is true for errors that say something about the provider's
// health: transport errors, timeouts, 5xx and 429 answers.
func countsAsFailure(err error) bool {
	if errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrImagesUnsupported) ||
		errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError || se.StatusCode == http.StatusTooManyRequests
	}
	return true
}
