package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aniscentsapp/aniscents/internal/models"
)

// PaymentMethods lists the gateways checkout currently offers.
func (h *Handlers) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.paymentService.AvailableMethods(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

// InitiatePayment starts a gateway transaction and redirects the customer to
// the gateway's checkout page.
func (h *Handlers) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gateway := vars["gateway"]
	orderNumber := vars["number"]

	result, err := h.paymentService.Initiate(r.Context(), orderNumber, gateway)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, result.AuthorizationURL, http.StatusSeeOther)
}

// PaymentCallback lands the customer back from the gateway and settles the
// payment. The reference travels in the query string; Flutterwave calls it
// tx_ref, Paystack and Stripe use our reference parameter.
func (h *Handlers) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	gateway := mux.Vars(r)["gateway"]

	reference := strings.TrimSpace(r.URL.Query().Get("reference"))
	if reference == "" {
		reference = strings.TrimSpace(r.URL.Query().Get("tx_ref"))
	}
	if reference == "" {
		respondError(w, http.StatusBadRequest, "A payment reference is required")
		return
	}

	result, err := h.paymentService.HandleCallback(r.Context(), gateway, reference)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	switch result.Status {
	case models.TxnSuccessful:
		http.Redirect(w, r, "/orders/"+result.OrderNumber+"?payment=success", http.StatusSeeOther)
	case models.TxnFailed:
		http.Redirect(w, r, "/orders/"+result.OrderNumber+"?payment=failed", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/orders/"+result.OrderNumber+"?payment=pending", http.StatusSeeOther)
	}
}
