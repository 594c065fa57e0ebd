package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aniscentsapp/aniscents/internal/cache"
	"github.com/aniscentsapp/aniscents/internal/config"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/services"
	"github.com/aniscentsapp/aniscents/internal/session"
)

const maxBodyBytes = 1 << 20 // 1 MB

// Handlers provides HTTP request handlers for the storefront and admin API.
type Handlers struct {
	config          *config.Config
	db              *pgxpool.Pool
	cacheProvider   cache.Provider
	catalogService  *services.CatalogService
	cartService     *services.CartService
	checkoutService *services.CheckoutService
	orderService    *services.OrderService
	paymentService  *services.PaymentService
	couponService   *services.CouponService
	couponAdmin     *services.CouponAdminService
	dashboards      *services.DashboardService
	authService     *services.AuthService
	reviewService   *services.ReviewService
	feedbackService *services.FeedbackService
	methodService   *services.PaymentMethodService
	contentService  *services.ContentService
	sessionManager  *session.Manager
	logger          *slog.Logger
}

type Dependencies struct {
	Config          *config.Config
	DB              *pgxpool.Pool
	CacheProvider   cache.Provider
	CatalogService  *services.CatalogService
	CartService     *services.CartService
	CheckoutService *services.CheckoutService
	OrderService    *services.OrderService
	PaymentService  *services.PaymentService
	CouponService   *services.CouponService
	CouponAdmin     *services.CouponAdminService
	Dashboards      *services.DashboardService
	AuthService     *services.AuthService
	ReviewService   *services.ReviewService
	FeedbackService *services.FeedbackService
	MethodService   *services.PaymentMethodService
	ContentService  *services.ContentService
	SessionManager  *session.Manager
	Logger          *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}
	if deps.CatalogService == nil {
		return nil, fmt.Errorf("handlers dependencies: catalogService is required")
	}
	if deps.CartService == nil {
		return nil, fmt.Errorf("handlers dependencies: cartService is required")
	}
	if deps.CheckoutService == nil {
		return nil, fmt.Errorf("handlers dependencies: checkoutService is required")
	}
	if deps.OrderService == nil {
		return nil, fmt.Errorf("handlers dependencies: orderService is required")
	}
	if deps.PaymentService == nil {
		return nil, fmt.Errorf("handlers dependencies: paymentService is required")
	}
	if deps.CouponService == nil {
		return nil, fmt.Errorf("handlers dependencies: couponService is required")
	}
	if deps.CouponAdmin == nil {
		return nil, fmt.Errorf("handlers dependencies: couponAdmin is required")
	}
	if deps.Dashboards == nil {
		return nil, fmt.Errorf("handlers dependencies: dashboards is required")
	}
	if deps.AuthService == nil {
		return nil, fmt.Errorf("handlers dependencies: authService is required")
	}
	if deps.ReviewService == nil {
		return nil, fmt.Errorf("handlers dependencies: reviewService is required")
	}
	if deps.FeedbackService == nil {
		return nil, fmt.Errorf("handlers dependencies: feedbackService is required")
	}
	if deps.MethodService == nil {
		return nil, fmt.Errorf("handlers dependencies: methodService is required")
	}
	if deps.ContentService == nil {
		return nil, fmt.Errorf("handlers dependencies: contentService is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}

	return &Handlers{
		config:          deps.Config,
		db:              deps.DB,
		cacheProvider:   deps.CacheProvider,
		catalogService:  deps.CatalogService,
		cartService:     deps.CartService,
		checkoutService: deps.CheckoutService,
		orderService:    deps.OrderService,
		paymentService:  deps.PaymentService,
		couponService:   deps.CouponService,
		couponAdmin:     deps.CouponAdmin,
		dashboards:      deps.Dashboards,
		authService:     deps.AuthService,
		reviewService:   deps.ReviewService,
		feedbackService: deps.FeedbackService,
		methodService:   deps.MethodService,
		contentService:  deps.ContentService,
		sessionManager:  deps.SessionManager,
		logger:          logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// SessionMiddleware adds session data to the request context.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

// EnsureSession guarantees an anonymous session so guest carts work.
func (h *Handlers) EnsureSession(next http.Handler) http.Handler {
	return h.sessionManager.EnsureSession(next)
}

func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return h.sessionManager.RequireAuth()(next)
}

func (h *Handlers) RequireStaff(next http.Handler) http.Handler {
	return h.sessionManager.RequireStaff()(next)
}

// cartIdentity maps the request session to a cart owner: the user id for
// logged-in customers, the session key for guests.
func (h *Handlers) cartIdentity(r *http.Request) (services.CartIdentity, error) {
	sess := h.sessionFromRequest(r.Context(), r)
	if sess.Authenticated() {
		return services.CartIdentity{UserID: sess.UserID}, nil
	}
	if key := h.sessionManager.SessionKey(r); key != "" {
		return services.CartIdentity{SessionKey: key}, nil
	}
	return services.CartIdentity{}, fmt.Errorf("no session for cart")
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) isSecure() bool {
	return secureCookiesFromConfig(h.config)
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}

func secureCookiesFromConfig(cfg *config.Config) bool {
	return SecureCookiesFromConfig(cfg)
}
