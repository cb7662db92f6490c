package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// StatusFor maps a ledger failure to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadSignature):
		return http.StatusUnauthorized
	case errors.Is(err, interfaces.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrAlreadyExists), errors.Is(err, interfaces.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, interfaces.ErrInvalidView):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "err", err)
	}
}

// WriteError writes err as an ErrorResponse. receipt may be nil.
func WriteError(w http.ResponseWriter, log *slog.Logger, err error, receipt *interfaces.Receipt) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "err", err)
	} else {
		log.Debug("Request rejected", "status", status, "err", err)
	}

	kind := interfaces.FailureKind(err)
	if errors.Is(err, ErrBadSignature) {
		kind = "bad_signature"
	}
	WriteJSON(w, log, status, ErrorResponse{
		Error:   kind,
		Message: err.Error(),
		Receipt: receipt,
	})
}

// WriteBadRequest answers malformed input that never reached the ledger.
func WriteBadRequest(w http.ResponseWriter, log *slog.Logger, message string) {
	WriteJSON(w, log, http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// WriteSubmission answers a mutation with its receipt, or with the failure
// and the failed receipt.
func WriteSubmission(w http.ResponseWriter, log *slog.Logger, receipt *interfaces.Receipt, err error) {
	if err != nil {
		WriteError(w, log, err, receipt)
		return
	}
	WriteJSON(w, log, http.StatusOK, receipt)
}
