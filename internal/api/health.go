package api

import (
	"net/http"

	"github.com/af-corp/content-assistant/internal/httputil"
	"github.com/af-corp/content-assistant/internal/upstream"
)

// Health serves GET /health.
type Health struct {
	Version string
	// Cache names the active cache backend.
	Cache string
	// Provider returns the current upstream provider name.
	Provider func() string
	Tracker  *upstream.HealthTracker
}

type healthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Cache    string            `json:"cache"`
	Provider string            `json:"provider,omitempty"`
	Circuits map[string]string `json:"circuits,omitempty"`
}

func (hh *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "healthy",
		Version: hh.Version,
		Cache:   hh.Cache,
	}
	if hh.Provider != nil {
		resp.Provider = hh.Provider()
	}
	if hh.Tracker != nil {
		resp.Circuits = hh.Tracker.States()
		if resp.Circuits[resp.Provider] == upstream.StateOpen.String() {
			resp.Status = "degraded"
		}
	}
	httputil.WriteJSON(w, RequestIDFromContext(r.Context()), http.StatusOK, resp)
}
