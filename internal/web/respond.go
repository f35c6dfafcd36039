package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"task_portal/internal/core"
)

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, msg string, statusCode int) {
	writeJSON(w, map[string]any{"error": msg}, statusCode)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

// writeErr maps service errors to status codes. Anything unrecognised is
// logged and answered with a generic message.
func writeErr(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, core.ErrUnauthorized),
		errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, core.ErrInvalidArgs),
		errors.Is(err, core.ErrUsernameTaken),
		errors.Is(err, core.ErrDeadlinePassed),
		errors.Is(err, core.ErrNoTasksToSubmit):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, core.ErrReportConflict):
		writeError(w, err.Error(), http.StatusConflict)
	default:
		log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err,
		)
		writeError(w, "internal error", http.StatusInternalServerError)
	}
}
