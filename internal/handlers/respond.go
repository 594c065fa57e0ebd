package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// respondServiceError translates service errors into HTTP responses. UserError
// messages are customer-safe and pass through; everything else is generic.
func (h *Handlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var userErr services.UserError
	switch {
	case errors.As(err, &userErr):
		respondError(w, http.StatusUnprocessableEntity, userErr.Message)
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCouponNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCartItemNotFound),
		errors.Is(err, services.ErrContentNotFound),
		errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrOrderNotYours):
		respondError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, services.ErrOrderStatusConflict):
		respondError(w, http.StatusConflict, "The order changed; reload and try again")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrAccountDisabled):
		respondError(w, http.StatusForbidden, "This account is disabled")
	case errors.Is(err, services.ErrInvalidResetToken):
		respondError(w, http.StatusBadRequest, "The reset link is invalid or has expired")
	default:
		h.loggerFromContext(r.Context()).Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
