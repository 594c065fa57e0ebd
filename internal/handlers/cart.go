package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/aniscentsapp/aniscents/internal/models"
	"github.com/aniscentsapp/aniscents/internal/services"
)

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	identity, err := h.cartIdentity(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "A session is required")
		return
	}
	cart, err := h.cartService.Resolve(r.Context(), identity)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	view, err := h.cartService.View(r.Context(), cart, identity)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"product_id"`
		VariantID string `json:"variant_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	productID, err := uuid.Parse(body.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "A valid product_id is required")
		return
	}
	variantID := uuid.Nil
	if strings.TrimSpace(body.VariantID) != "" {
		variantID, err = uuid.Parse(body.VariantID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid variant_id")
			return
		}
	}
	if body.Quantity <= 0 {
		body.Quantity = 1
	}

	h.mutateCart(w, r, func(cart *models.Cart, _ services.CartIdentity) error {
		_, err := h.cartService.AddItem(r.Context(), cart, services.AddItemInput{
			ProductID: productID,
			VariantID: variantID,
			Quantity:  body.Quantity,
		})
		return err
	})
}

// UpdateCartItem changes a line's quantity; zero removes it.
func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mutateCart(w, r, func(cart *models.Cart, _ services.CartIdentity) error {
		return h.cartService.UpdateQuantity(r.Context(), cart, itemID, body.Quantity)
	})
}

func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	h.mutateCart(w, r, func(cart *models.Cart, _ services.CartIdentity) error {
		return h.cartService.RemoveItem(r.Context(), cart, itemID)
	})
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(cart *models.Cart, _ services.CartIdentity) error {
		return h.cartService.Clear(r.Context(), cart)
	})
}

func (h *Handlers) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(body.Code) == "" {
		respondError(w, http.StatusBadRequest, "A coupon code is required")
		return
	}

	h.mutateCart(w, r, func(cart *models.Cart, identity services.CartIdentity) error {
		_, err := h.cartService.ApplyCoupon(r.Context(), cart, identity, body.Code)
		return err
	})
}

func (h *Handlers) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(cart *models.Cart, _ services.CartIdentity) error {
		return h.cartService.RemoveCoupon(r.Context(), cart)
	})
}

func (h *Handlers) SetGiftWrap(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mutateCart(w, r, func(cart *models.Cart, _ services.CartIdentity) error {
		return h.cartService.SetGiftWrap(r.Context(), cart, body.Enabled)
	})
}

func (h *Handlers) SetShippingMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method string `json:"method"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mutateCart(w, r, func(cart *models.Cart, _ services.CartIdentity) error {
		return h.cartService.SetShippingMethod(r.Context(), cart, body.Method)
	})
}

func (h *Handlers) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"methods": services.ShippingMethods()})
}

// mutateCart resolves the session cart, applies the mutation, and responds
// with the recomputed view.
func (h *Handlers) mutateCart(w http.ResponseWriter, r *http.Request, mutate func(cart *models.Cart, identity services.CartIdentity) error) {
	identity, err := h.cartIdentity(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "A session is required")
		return
	}
	cart, err := h.cartService.Resolve(r.Context(), identity)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	if err := mutate(cart, identity); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	view, err := h.cartService.View(r.Context(), cart, identity)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
