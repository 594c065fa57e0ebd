package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/aniscentsapp/aniscents/internal/models"
)

// SiteContent serves the active content blocks the storefront renders.
func (h *Handlers) SiteContent(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.contentService.Blocks(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"content": blocks})
}

func (h *Handlers) GetContentBlock(w http.ResponseWriter, r *http.Request) {
	block, err := h.contentService.Block(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, block)
}

func (h *Handlers) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.contentService.Subscribe(r.Context(), body.Email); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "You're on the list"})
}

func (h *Handlers) AdminListContent(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.contentService.All(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"content": blocks})
}

func (h *Handlers) AdminSaveContent(w http.ResponseWriter, r *http.Request) {
	var block models.ContentBlock
	if err := decodeJSON(w, r, &block); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.contentService.Save(r.Context(), &block); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"block": block})
}

func (h *Handlers) AdminDeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := h.contentService.Delete(r.Context(), mux.Vars(r)["key"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) AdminListSubscribers(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 && parsed <= 1000 {
		limit = parsed
	}
	subscribers, err := h.contentService.Subscribers(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"subscribers": subscribers, "count": len(subscribers)})
}
