package generate

import (
	"errors"
	"fmt"
)

// ConfigurationError means the service is not set up to serve the request,
// typically because no upstream credential is configured.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UpstreamError wraps a failed provider call. StatusCode is zero for
// transport failures and timeouts; it is kept for logs only.
type UpstreamError struct {
	Provider   string
	Operation  string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsConfiguration reports whether err is a *ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsUpstream reports whether err is an *UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
