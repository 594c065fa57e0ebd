package handlers

import (
	"net/http"

	"github.com/aniscentsapp/aniscents/internal/services"
)

// SubmitFeedback accepts site feedback from anyone, logged in or not.
func (h *Handlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Email   string `json:"email"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.feedbackService.Submit(r.Context(), services.SubmitFeedbackInput{
		Type:    body.Type,
		Message: body.Message,
		Email:   body.Email,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"feedback": entry})
}
