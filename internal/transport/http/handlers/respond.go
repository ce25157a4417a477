package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vedran77/linkup/pkg/logger"
	"github.com/vedran77/linkup/pkg/validator"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

// writeInternal logs and maps unexpected errors. Store timeouts come back
// as 503 RETRY so clients know the write is safe to retry (with the same
// nonce, for message sends); everything else is a plain 500.
func writeInternal(w http.ResponseWriter, op string, err error) {
	logger.Error().Err(err).Str("op", op).Msg("request failed")
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		writeError(w, http.StatusServiceUnavailable, "RETRY", "Temporary storage failure, please retry")
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}
