package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: msg})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sheetchart.ErrDecode), errors.Is(err, sheetchart.ErrFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sheetchart.ErrSelection):
		return http.StatusBadRequest
	case errors.Is(err, sheetchart.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, sheetchart.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writePipelineError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
