package respond

import (
	"encoding/json"
	"net/http"

	errx "github.com/ai-english-tutor/server/internal/core/error"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logx.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func WriteError(w http.ResponseWriter, statusCode int, short, details string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: short, Details: details})
}

// WriteErr maps err to its status and reports the full error chain as details.
func WriteErr(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	short := "Server error"
	switch status {
	case http.StatusBadRequest:
		short = "Invalid request"
	case http.StatusTooManyRequests:
		short = "Too many requests"
	}
	WriteError(w, status, short, err.Error())
}

func WriteMethodNotAllowed(w http.ResponseWriter, details string) {
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", details)
}
