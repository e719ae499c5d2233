package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "roombooking/internal/errors"
)

// envelope is the body of every response.
type envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Payload any    `json:"payload"`
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	if body.Payload == nil {
		body.Payload = struct{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusOK, envelope{Message: "success", Payload: payload})
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Error: true, Message: message})
}

// writeError answers client errors with their own code and message and
// everything else with a logged 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if he, ok := apperrors.AsHTTPError(err); ok {
		writeFailure(w, he.Code, he.Message)
		return
	}
	logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("requestId", w.Header().Get(requestIDHeader)),
		zap.Error(err))
	writeFailure(w, http.StatusInternalServerError, "internal server error")
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusNotFound, "Not found")
}
