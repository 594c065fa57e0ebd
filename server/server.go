package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aniscentsapp/aniscents/internal/config"
	"github.com/aniscentsapp/aniscents/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.Use(h.MetricsContext)

	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Catalog is public and session-free.
	r.HandleFunc("/products", h.ListProducts).Methods("GET").Name("products.list")
	r.HandleFunc("/products/{slug}", h.GetProduct).Methods("GET").Name("products.get")
	r.HandleFunc("/products/{slug}/reviews", h.ListProductReviews).Methods("GET").Name("products.reviews.list")
	r.HandleFunc("/categories", h.ListCategories).Methods("GET").Name("categories.list")
	r.HandleFunc("/categories/{slug}", h.GetCategory).Methods("GET").Name("categories.get")
	r.HandleFunc("/brands", h.ListBrands).Methods("GET").Name("brands.list")
	r.HandleFunc("/content", h.SiteContent).Methods("GET").Name("content.list")
	r.HandleFunc("/content/{key}", h.GetContentBlock).Methods("GET").Name("content.get")
	r.HandleFunc("/shipping-methods", h.ShippingMethods).Methods("GET").Name("shipping.methods")
	r.HandleFunc("/payment-methods", h.PaymentMethods).Methods("GET").Name("payment.methods")

	// Storefront routes carry a session; anonymous ones own guest carts.
	store := r.NewRoute().Subrouter()
	store.Use(h.EnsureSession)
	store.Use(h.RequireSameOrigin)

	store.HandleFunc("/cart", h.GetCart).Methods("GET").Name("cart.get")
	store.HandleFunc("/cart/items", h.AddCartItem).Methods("POST").Name("cart.items.add")
	store.HandleFunc("/cart/items/{id}", h.UpdateCartItem).Methods("POST").Name("cart.items.update")
	store.HandleFunc("/cart/items/{id}/remove", h.RemoveCartItem).Methods("POST").Name("cart.items.remove")
	store.HandleFunc("/cart/clear", h.ClearCart).Methods("POST").Name("cart.clear")
	store.HandleFunc("/cart/coupon", h.ApplyCoupon).Methods("POST").Name("cart.coupon.apply")
	store.HandleFunc("/cart/coupon/remove", h.RemoveCoupon).Methods("POST").Name("cart.coupon.remove")
	store.HandleFunc("/cart/gift-wrap", h.SetGiftWrap).Methods("POST").Name("cart.gift_wrap")
	store.HandleFunc("/cart/shipping", h.SetShippingMethod).Methods("POST").Name("cart.shipping")

	store.HandleFunc("/orders/checkout", h.Checkout).Methods("POST").Name("orders.checkout")
	store.HandleFunc("/orders", h.ListOrders).Methods("GET").Name("orders.list")
	store.HandleFunc("/orders/{number}", h.GetOrder).Methods("GET").Name("orders.get")
	store.HandleFunc("/orders/{number}/cancel", h.CancelOrder).Methods("POST").Name("orders.cancel")

	store.HandleFunc("/products/{slug}/reviews", h.SubmitReview).Methods("POST").Name("products.reviews.submit")
	store.HandleFunc("/feedback", h.SubmitFeedback).Methods("POST").Name("feedback.submit")
	store.HandleFunc("/newsletter/subscribe", h.SubscribeNewsletter).Methods("POST").Name("newsletter.subscribe")

	store.HandleFunc("/auth/register", h.Register).Methods("POST").Name("auth.register")
	store.HandleFunc("/auth/login", h.Login).Methods("POST").Name("auth.login")
	store.HandleFunc("/auth/logout", h.Logout).Methods("GET").Name("auth.logout")
	store.HandleFunc("/auth/password/forgot", h.ForgotPassword).Methods("POST").Name("auth.password.forgot")
	store.HandleFunc("/auth/password/reset", h.ResetPassword).Methods("POST").Name("auth.password.reset")
	store.HandleFunc("/auth/profile", h.Profile).Methods("GET").Name("auth.profile")
	store.HandleFunc("/auth/profile", h.UpdateProfile).Methods("POST").Name("auth.profile.update")

	// Gateway redirects come from offsite, so no same-origin check here.
	pay := r.NewRoute().Subrouter()
	pay.Use(h.SessionMiddleware)
	pay.HandleFunc("/orders/pay/{gateway}/callback", h.PaymentCallback).Methods("GET").Name("orders.pay.callback")
	pay.HandleFunc("/orders/pay/{gateway}/{number}", h.InitiatePayment).Methods("GET").Name("orders.pay")

	// Admin routes require a staff session.
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(h.SessionMiddleware)
	admin.Use(h.RequireStaff)
	admin.Use(h.RequireSameOrigin)

	admin.HandleFunc("/dashboard", h.AdminDashboard).Methods("GET").Name("admin.dashboard")

	admin.HandleFunc("/orders", h.AdminListOrders).Methods("GET").Name("admin.orders.list")
	admin.HandleFunc("/orders/{number}", h.AdminGetOrder).Methods("GET").Name("admin.orders.get")
	admin.HandleFunc("/orders/{id}/processing", h.AdminMarkProcessing).Methods("POST").Name("admin.orders.processing")
	admin.HandleFunc("/orders/{id}/ship", h.AdminShipOrder).Methods("POST").Name("admin.orders.ship")
	admin.HandleFunc("/orders/{id}/deliver", h.AdminMarkDelivered).Methods("POST").Name("admin.orders.deliver")
	admin.HandleFunc("/orders/{id}/cancel", h.AdminCancelOrder).Methods("POST").Name("admin.orders.cancel")
	admin.HandleFunc("/orders/{id}/refund", h.AdminRefundOrder).Methods("POST").Name("admin.orders.refund")
	admin.HandleFunc("/orders/{id}/tracking", h.AdminUpdateTracking).Methods("POST").Name("admin.orders.tracking")
	admin.HandleFunc("/orders/{id}/note", h.AdminSetOrderNote).Methods("POST").Name("admin.orders.note")
	admin.HandleFunc("/orders/{id}/delete", h.AdminDeleteOrder).Methods("POST").Name("admin.orders.delete")

	admin.HandleFunc("/coupons", h.AdminListCoupons).Methods("GET").Name("admin.coupons.list")
	admin.HandleFunc("/coupons", h.AdminCreateCoupon).Methods("POST").Name("admin.coupons.create")
	admin.HandleFunc("/coupons/{id}", h.AdminUpdateCoupon).Methods("POST").Name("admin.coupons.update")
	admin.HandleFunc("/coupons/{id}/delete", h.AdminDeleteCoupon).Methods("POST").Name("admin.coupons.delete")

	admin.HandleFunc("/products", h.AdminListProducts).Methods("GET").Name("admin.products.list")
	admin.HandleFunc("/products", h.AdminCreateProduct).Methods("POST").Name("admin.products.create")
	admin.HandleFunc("/products/{id}", h.AdminUpdateProduct).Methods("POST").Name("admin.products.update")
	admin.HandleFunc("/products/{id}/delete", h.AdminDeleteProduct).Methods("POST").Name("admin.products.delete")

	admin.HandleFunc("/catalog/import", h.AdminImportCatalog).Methods("POST").Name("admin.catalog.import")

	admin.HandleFunc("/payment-methods", h.AdminListPaymentMethods).Methods("GET").Name("admin.payment_methods.list")
	admin.HandleFunc("/payment-methods", h.AdminSavePaymentMethod).Methods("POST").Name("admin.payment_methods.save")
	admin.HandleFunc("/payment-methods/{code}/delete", h.AdminDeletePaymentMethod).Methods("POST").Name("admin.payment_methods.delete")

	admin.HandleFunc("/content", h.AdminListContent).Methods("GET").Name("admin.content.list")
	admin.HandleFunc("/content", h.AdminSaveContent).Methods("POST").Name("admin.content.save")
	admin.HandleFunc("/content/{key}/delete", h.AdminDeleteContent).Methods("POST").Name("admin.content.delete")
	admin.HandleFunc("/newsletter", h.AdminListSubscribers).Methods("GET").Name("admin.newsletter.list")

	admin.HandleFunc("/reviews/pending", h.AdminListPendingReviews).Methods("GET").Name("admin.reviews.pending")
	admin.HandleFunc("/reviews/{id}/approve", h.AdminApproveReview).Methods("POST").Name("admin.reviews.approve")

	admin.HandleFunc("/feedback", h.AdminListFeedback).Methods("GET").Name("admin.feedback.list")
	admin.HandleFunc("/feedback/{id}/status", h.AdminUpdateFeedbackStatus).Methods("POST").Name("admin.feedback.status")

	return r
}
