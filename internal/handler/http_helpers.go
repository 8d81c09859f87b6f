package handler

import (
	"encoding/json"
	"net/http"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

type errorBody struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Type    string          `json:"type,omitempty"`
	Details string          `json:"details,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorBody{Error: message})
}

// writeAppError maps err onto its status code. Errors that are not AppErrors
// are reported as internal without leaking their text.
func writeAppError(w http.ResponseWriter, logger domain.Logger, op string, err error) {
	status := apperrors.GetStatusCode(err)
	appErr, ok := apperrors.As(err)
	if !ok {
		logger.Error("Unhandled error", err, "operation", op)
		writeError(w, status, "internal server error")
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, "operation", op, "type", string(appErr.Type))
	} else {
		logger.Warn("Request rejected", "operation", op, "type", string(appErr.Type), "error", appErr.Message)
	}

	writeJSON(w, status, errorBody{
		Error:   appErr.Message,
		Type:    string(appErr.Type),
		Details: appErr.Details,
		Payload: appErr.Payload,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
