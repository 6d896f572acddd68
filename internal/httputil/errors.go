package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/af-corp/content-assistant/internal/types"
)

// WriteJSON writes v with the given status and the request id header.
func WriteJSON(w http.ResponseWriter, requestID string, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteResult writes a successful generation result.
func WriteResult(w http.ResponseWriter, requestID string, result types.GeneratedResult) {
	WriteJSON(w, requestID, http.StatusOK, result)
}

// WriteError writes the {success:false, error, details} envelope.
func WriteError(w http.ResponseWriter, requestID string, statusCode int, message string, details ...any) {
	WriteJSON(w, requestID, statusCode, types.Failure(message, details...))
}

func WriteValidationError(w http.ResponseWriter, requestID string, details []any) {
	WriteError(w, requestID, http.StatusBadRequest, "Invalid input", details...)
}

func WriteBadRequestError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusBadRequest, message)
}

func WriteRateLimitError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusTooManyRequests, message)
}

func WriteContentBlockedError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusUnprocessableEntity, message)
}

func WriteInternalError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusInternalServerError, message)
}

func WriteUpstreamError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusBadGateway, message)
}

func WriteServiceUnavailableError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusServiceUnavailable, message)
}
