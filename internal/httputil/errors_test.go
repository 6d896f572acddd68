package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/af-corp/content-assistant/internal/types"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, "req_123", http.StatusBadRequest, "test message")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if rid := w.Header().Get("X-Request-ID"); rid != "req_123" {
		t.Errorf("expected X-Request-ID req_123, got %s", rid)
	}

	resp := decode(t, w)
	if resp["success"] != false {
		t.Errorf("expected success false, got %v", resp["success"])
	}
	if resp["error"] != "test message" {
		t.Errorf("expected error 'test message', got %v", resp["error"])
	}
	if _, ok := resp["details"]; ok {
		t.Error("details should be omitted when empty")
	}
	if _, ok := resp["content"]; ok {
		t.Error("failures must not carry content")
	}
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidationError(w, "req_1", []any{
		map[string]string{"field": "topic", "message": "is required"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	resp := decode(t, w)
	if resp["error"] != "Invalid input" {
		t.Errorf("expected 'Invalid input', got %v", resp["error"])
	}
	details, ok := resp["details"].([]any)
	if !ok || len(details) != 1 {
		t.Fatalf("expected one detail, got %v", resp["details"])
	}
}

func TestWriteResult(t *testing.T) {
	w := httptest.NewRecorder()
	WriteResult(w, "req_2", types.GeneratedResult{Success: true, Content: "hello"})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	resp := decode(t, w)
	if resp["success"] != true || resp["content"] != "hello" {
		t.Errorf("unexpected body %v", resp)
	}
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name  string
		write func(http.ResponseWriter)
		want  int
	}{
		{"bad request", func(w http.ResponseWriter) { WriteBadRequestError(w, "r", "m") }, http.StatusBadRequest},
		{"rate limit", func(w http.ResponseWriter) { WriteRateLimitError(w, "r", "m") }, http.StatusTooManyRequests},
		{"blocked", func(w http.ResponseWriter) { WriteContentBlockedError(w, "r", "m") }, http.StatusUnprocessableEntity},
		{"internal", func(w http.ResponseWriter) { WriteInternalError(w, "r", "m") }, http.StatusInternalServerError},
		{"upstream", func(w http.ResponseWriter) { WriteUpstreamError(w, "r", "m") }, http.StatusBadGateway},
		{"unavailable", func(w http.ResponseWriter) { WriteServiceUnavailableError(w, "r", "m") }, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
			if resp := decode(t, w); resp["error"] != "m" {
				t.Errorf("expected error 'm', got %v", resp["error"])
			}
		})
	}
}
