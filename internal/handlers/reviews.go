package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aniscentsapp/aniscents/internal/services"
)

// ListProductReviews serves the approved reviews for a product.
func (h *Handlers) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	detail, err := h.catalogService.ProductBySlug(r.Context(), slug)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reviews": detail.Reviews})
}

// SubmitReview accepts a review from a logged-in customer; it awaits
// moderation before appearing on the product page.
func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromRequest(r.Context(), r)
	if !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "Sign in to leave a review")
		return
	}

	slug := mux.Vars(r)["slug"]
	detail, err := h.catalogService.ProductBySlug(r.Context(), slug)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	var body struct {
		Rating  int    `json:"rating"`
		Title   string `json:"title"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.reviewService.Submit(r.Context(), sess.UserID, services.SubmitReviewInput{
		ProductID: detail.Product.ID,
		Rating:    body.Rating,
		Title:     body.Title,
		Comment:   body.Comment,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"review": review})
}
