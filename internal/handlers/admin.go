package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/aniscentsapp/aniscents/internal/models"
	"github.com/aniscentsapp/aniscents/internal/services"
)

// AdminDashboard serves the sales and inventory summaries.
func (h *Handlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	sales, err := h.dashboards.Sales(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	inventory, err := h.dashboards.Inventory(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sales":     sales,
		"inventory": inventory,
	})
}

// AdminListOrders lists orders, optionally filtered by status.
func (h *Handlers) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	limit := 50
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 && parsed <= 200 {
		limit = parsed
	}

	orders, err := h.orderService.List(r.Context(), status, limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handlers) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.orderService.GetByNumber(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) AdminMarkProcessing(w http.ResponseWriter, r *http.Request) {
	h.adminOrderAction(w, r, func(orderID uuid.UUID) error {
		return h.orderService.MarkProcessing(r.Context(), orderID)
	})
}

func (h *Handlers) AdminShipOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TrackingNumber string `json:"tracking_number"`
		Carrier        string `json:"carrier"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.adminOrderAction(w, r, func(orderID uuid.UUID) error {
		return h.orderService.Ship(r.Context(), orderID, services.ShipOrderInput{
			TrackingNumber: body.TrackingNumber,
			Carrier:        body.Carrier,
		})
	})
}

func (h *Handlers) AdminMarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.adminOrderAction(w, r, func(orderID uuid.UUID) error {
		return h.orderService.MarkDelivered(r.Context(), orderID)
	})
}

func (h *Handlers) AdminCancelOrder(w http.ResponseWriter, r *http.Request) {
	h.adminOrderAction(w, r, func(orderID uuid.UUID) error {
		return h.orderService.Cancel(r.Context(), orderID)
	})
}

func (h *Handlers) AdminRefundOrder(w http.ResponseWriter, r *http.Request) {
	h.adminOrderAction(w, r, func(orderID uuid.UUID) error {
		return h.orderService.Refund(r.Context(), orderID)
	})
}

func (h *Handlers) AdminUpdateTracking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TrackingNumber string `json:"tracking_number"`
		Carrier        string `json:"carrier"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.adminOrderAction(w, r, func(orderID uuid.UUID) error {
		return h.orderService.UpdateTracking(r.Context(), orderID, body.TrackingNumber, body.Carrier)
	})
}

func (h *Handlers) AdminSetOrderNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.adminOrderAction(w, r, func(orderID uuid.UUID) error {
		return h.orderService.SetInternalNote(r.Context(), orderID, body.Note)
	})
}

func (h *Handlers) AdminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	h.adminOrderAction(w, r, func(orderID uuid.UUID) error {
		return h.orderService.Delete(r.Context(), orderID)
	})
}

// adminOrderAction resolves the order id from the route, runs the action, and
// invalidates the dashboard caches that order changes feed.
func (h *Handlers) adminOrderAction(w http.ResponseWriter, r *http.Request, action func(orderID uuid.UUID) error) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	if err := action(orderID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.dashboards.Invalidate(r.Context(), "sales")
	h.dashboards.Invalidate(r.Context(), "inventory")
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) AdminListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.couponAdmin.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"coupons": coupons})
}

type couponBody struct {
	Code            string   `json:"code"`
	Description     string   `json:"description"`
	Type            string   `json:"type"`
	Value           int64    `json:"value"`
	MinPurchaseKobo int64    `json:"min_purchase_kobo"`
	MaxDiscountKobo int64    `json:"max_discount_kobo"`
	MaxUses         int      `json:"max_uses"`
	MaxUsesPerUser  int      `json:"max_uses_per_user"`
	ValidFrom       string   `json:"valid_from"`
	ValidUntil      string   `json:"valid_until"`
	IsActive        bool     `json:"is_active"`
	FirstOrderOnly  bool     `json:"first_order_only"`
	ProductIDs      []string `json:"product_ids"`
	CategoryIDs     []string `json:"category_ids"`
}

func (b couponBody) toCoupon() (*models.Coupon, error) {
	coupon := &models.Coupon{
		Code:            b.Code,
		Description:     b.Description,
		Type:            models.CouponType(b.Type),
		Value:           b.Value,
		MinPurchaseKobo: b.MinPurchaseKobo,
		MaxDiscountKobo: b.MaxDiscountKobo,
		MaxUses:         b.MaxUses,
		MaxUsesPerUser:  b.MaxUsesPerUser,
		IsActive:        b.IsActive,
		FirstOrderOnly:  b.FirstOrderOnly,
	}
	for _, raw := range b.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		coupon.ProductIDs = append(coupon.ProductIDs, id)
	}
	for _, raw := range b.CategoryIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		coupon.CategoryIDs = append(coupon.CategoryIDs, id)
	}
	if b.ValidFrom != "" {
		t, err := time.Parse(time.RFC3339, b.ValidFrom)
		if err != nil {
			return nil, err
		}
		coupon.ValidFrom = t
	}
	if b.ValidUntil != "" {
		t, err := time.Parse(time.RFC3339, b.ValidUntil)
		if err != nil {
			return nil, err
		}
		coupon.ValidUntil = t
	}
	return coupon, nil
}

func (h *Handlers) AdminCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var body couponBody
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	coupon, err := body.toCoupon()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid coupon fields")
		return
	}

	if err := h.couponAdmin.Save(r.Context(), coupon); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"coupon": coupon})
}

func (h *Handlers) AdminUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid coupon id")
		return
	}

	var body couponBody
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	coupon, err := body.toCoupon()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid coupon fields")
		return
	}
	coupon.ID = couponID

	if err := h.couponAdmin.Save(r.Context(), coupon); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"coupon": coupon})
}

func (h *Handlers) AdminDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid coupon id")
		return
	}
	if err := h.couponAdmin.Delete(r.Context(), couponID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.AdminProducts(r.Context(), browseInputFromQuery(r.URL.Query()))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products, "count": len(products)})
}

func (h *Handlers) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.catalogService.SaveProduct(r.Context(), &product); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.dashboards.Invalidate(r.Context(), "inventory")
	respondJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (h *Handlers) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	product.ID = productID

	if err := h.catalogService.SaveProduct(r.Context(), &product); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.dashboards.Invalidate(r.Context(), "inventory")
	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handlers) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	if err := h.catalogService.DeleteProduct(r.Context(), productID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.dashboards.Invalidate(r.Context(), "inventory")
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AdminImportCatalog loads a YAML catalog document into the store.
func (h *Handlers) AdminImportCatalog(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read catalog document")
		return
	}

	result, err := h.catalogService.Import(r.Context(), content)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.dashboards.Invalidate(r.Context(), "inventory")
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) AdminListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.methodService.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

func (h *Handlers) AdminSavePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code         string `json:"code"`
		DisplayName  string `json:"display_name"`
		DisplayOrder int    `json:"display_order"`
		IsActive     bool   `json:"is_active"`
		Credentials  string `json:"credentials"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	method, err := h.methodService.Save(r.Context(), services.SavePaymentMethodInput{
		Code:         body.Code,
		DisplayName:  body.DisplayName,
		DisplayOrder: body.DisplayOrder,
		IsActive:     body.IsActive,
		Credentials:  body.Credentials,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"method": method})
}

func (h *Handlers) AdminDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	if err := h.methodService.Delete(r.Context(), mux.Vars(r)["code"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) AdminListPendingReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListPending(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (h *Handlers) AdminApproveReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid review id")
		return
	}
	if err := h.reviewService.Approve(r.Context(), reviewID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handlers) AdminListFeedback(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 && parsed <= 500 {
		limit = parsed
	}
	entries, err := h.feedbackService.List(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"feedback": entries})
}

func (h *Handlers) AdminUpdateFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	feedbackID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid feedback id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.feedbackService.UpdateStatus(r.Context(), feedbackID, models.FeedbackStatus(body.Status)); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
