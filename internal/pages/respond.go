package pages

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// errorEnvelope is the page-level error state: a user-safe message plus a
// retry hint for transient fetch failures.
type errorEnvelope struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("error", err))
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrBridgeUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, shared.ErrCommandRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrInvalidAmount), errors.Is(err, shared.ErrInsufficientBalance):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrBusy):
		status = http.StatusConflict
	}
	writeJSON(logger, w, status, errorEnvelope{
		Error:     shared.UserSafeMessage(err),
		Retryable: shared.Retryable(err),
	})
}
