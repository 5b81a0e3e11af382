package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/coremaven/llama.cpp-GUI/internal/launch"
	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps well-known service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case launch.IsValidation(err):
		return http.StatusBadRequest
	case settings.IsProfileNotFound(err):
		return http.StatusNotFound
	case supervisor.IsAlreadyRunning(err), supervisor.IsNotRunning(err):
		return http.StatusConflict
	case supervisor.IsSpawn(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusForError(err), err.Error())
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
