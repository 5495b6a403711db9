package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lvu/firemerge/internal/direction"
	"github.com/lvu/firemerge/internal/export"
	"github.com/lvu/firemerge/internal/firefly"
	"github.com/lvu/firemerge/internal/reconcile"
	"github.com/lvu/firemerge/internal/statement"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Upstream
// errors pass through verbatim; everything unexpected is a 500.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var parserErr *statement.ConfigError
	var exportErr *export.ConfigError
	var statusErr *firefly.StatusError
	var mismatchErr *direction.AccountMismatchError

	switch {
	case errors.As(err, &parserErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: parserErr.Field})
	case errors.As(err, &exportErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: exportErr.Field})
	case errors.Is(err, direction.ErrIncompleteTransaction):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, reconcile.ErrNotSavable):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &mismatchErr):
		log.Error("account mismatch", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	case errors.As(err, &statusErr):
		log.Warn("upstream error", "status", statusErr.StatusCode, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
