// internal/app/features/shared/respond.go

// Package shared holds the JSON plumbing every feature handler uses:
// response encoding, error rendering, and request body decoding with the
// store error taxonomy mapped onto HTTP statuses.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/store"
	"go.uber.org/zap"
)

// JSON writes v with the given status. Encoding failures are the
// caller's logger's problem; the status line is already gone.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the standard error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Decode reads a JSON body into dst. On failure it writes a 400 and
// returns false; handlers return immediately.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

// StoreError maps a store-layer error onto an HTTP response. Validation
// errors carry their field message; everything unexpected is a logged
// 500 with a generic body.
func StoreError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		Error(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, store.ErrNotFound):
		Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		Error(w, http.StatusConflict, "already exists")
	case errors.Is(err, store.ErrCapacityExceeded):
		Error(w, http.StatusConflict, store.ErrCapacityExceeded.Error())
	default:
		if log != nil {
			log.Error("store operation failed", zap.Error(err))
		}
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
