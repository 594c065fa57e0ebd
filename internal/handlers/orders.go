package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aniscentsapp/aniscents/internal/models"
	"github.com/aniscentsapp/aniscents/internal/services"
)

type addressBody struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a addressBody) toAddress() models.Address {
	return models.Address{
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

// Checkout converts the session cart into an order.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email           string      `json:"email"`
		Name            string      `json:"name"`
		Phone           string      `json:"phone"`
		ShippingAddress addressBody `json:"shipping_address"`
		BillingAddress  addressBody `json:"billing_address"`
		Note            string      `json:"note"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

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

	order, err := h.checkoutService.Checkout(r.Context(), cart, identity, services.CheckoutInput{
		CustomerEmail:   body.Email,
		CustomerName:    body.Name,
		CustomerPhone:   body.Phone,
		ShippingAddress: body.ShippingAddress.toAddress(),
		BillingAddress:  body.BillingAddress.toAddress(),
		CustomerNote:    body.Note,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"order": order})
}

// ListOrders shows the logged-in customer's order history.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromRequest(r.Context(), r)
	if !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "Sign in to view your orders")
		return
	}

	orders, err := h.orderService.ListForUser(r.Context(), sess.UserID, 50)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// GetOrder shows one order. Logged-in customers may only see their own;
// guests can look an order up by number from the confirmation flow.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := mux.Vars(r)["number"]
	sess := h.sessionFromRequest(r.Context(), r)

	var view *services.OrderView
	var err error
	if sess.Authenticated() {
		view, err = h.orderService.GetForUser(r.Context(), orderNumber, sess.UserID)
	} else {
		view, err = h.orderService.GetByNumber(r.Context(), orderNumber)
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CancelOrder lets a customer cancel their own unshipped order.
func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFromRequest(r.Context(), r)
	if !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "Sign in to cancel an order")
		return
	}

	orderNumber := mux.Vars(r)["number"]
	if err := h.orderService.CancelForUser(r.Context(), orderNumber, sess.UserID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
