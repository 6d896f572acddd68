package ratelimit

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/httputil"
	"github.com/af-corp/content-assistant/internal/telemetry"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRetryAfter         = "Retry-After"
)

// Middleware returns chi middleware that limits requests per client IP. It
// expects chi's RealIP middleware to have run first. cfg is read per request
// so reloads take effect immediately.
func Middleware(limiter *Limiter, cfg func() config.RateLimitConfig, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rl := cfg()
			if !rl.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			reqID := w.Header().Get("X-Request-ID")
			client := clientIP(r)
			limit := int64(rl.RequestsPerWindow)

			result, _ := limiter.Check(r.Context(), "ip:"+client, limit, rl.Window)

			// Always set rate limit headers
			w.Header().Set(headerRateLimitLimit, strconv.FormatInt(limit, 10))
			w.Header().Set(headerRateLimitRemaining, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"client_ip", client,
					"limit", limit,
					"window", rl.Window.String(),
				)
				if metrics != nil {
					metrics.RecordRateLimitHit()
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
				httputil.WriteRateLimitError(w, reqID,
					fmt.Sprintf("Too many requests: limit is %d per %s. Please try again later.", limit, humanWindow(rl.Window)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func humanWindow(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	default:
		return d.String()
	}
}
