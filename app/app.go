package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aniscentsapp/aniscents/internal/cache"
	"github.com/aniscentsapp/aniscents/internal/config"
	"github.com/aniscentsapp/aniscents/internal/crypto"
	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/email"
	"github.com/aniscentsapp/aniscents/internal/handlers"
	"github.com/aniscentsapp/aniscents/internal/payments"
	"github.com/aniscentsapp/aniscents/internal/services"
	"github.com/aniscentsapp/aniscents/internal/session"
)

const storeName = "Aniscents"

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Handlers       *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:              cfg.SessionStoreProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessionManager := session.NewManager(sessionStore, handlers.SecureCookiesFromConfig(cfg))

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	productStore := db.NewProductStore(database)
	categoryStore := db.NewCategoryStore(database)
	brandStore := db.NewBrandStore(database)
	cartStore := db.NewCartStore(database)
	couponStore := db.NewCouponStore(database)
	orderStore := db.NewOrderStore(database)
	paymentStore := db.NewPaymentStore(database)
	methodStore := db.NewPaymentMethodStore(database)
	userStore := db.NewUserStore(database)
	reviewStore := db.NewReviewStore(database)
	feedbackStore := db.NewFeedbackStore(database)
	contentStore := db.NewContentStore(database)

	emailProvider, renderer, err := newEmail(cfg)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, err
	}

	events := newEventSink(cfg, orderStore, emailProvider, renderer, logger)

	couponService := services.NewCouponService(couponStore, orderStore, logger.With("component", "coupon_service"))
	couponAdmin := services.NewCouponAdminService(couponStore, logger.With("component", "coupon_admin"))
	cartService := services.NewCartService(cartStore, productStore, couponService, logger.With("component", "cart_service"))
	checkoutService := services.NewCheckoutService(
		cartStore,
		productStore,
		couponStore,
		orderStore,
		cartService,
		events,
		cfg.OrderNumberPrefix,
		cfg.Currency,
		cfg.TaxRateBasisPoints,
		logger.With("component", "checkout_service"),
	)
	orderService := services.NewOrderService(orderStore, productStore, paymentStore, events, logger.With("component", "order_service"))
	paymentService := services.NewPaymentService(
		paymentStore,
		orderStore,
		methodStore,
		newGatewayRegistry(cfg),
		cacheProvider,
		events,
		cfg.BaseURL,
		logger.With("component", "payment_service"),
	)
	catalogService := services.NewCatalogService(productStore, categoryStore, brandStore, couponStore, reviewStore, logger.With("component", "catalog_service"))
	dashboardService := services.NewDashboardService(orderStore, productStore, userStore, cacheProvider, logger.With("component", "dashboard_service"))
	authService := services.NewAuthService(userStore, emailProvider, renderer, cfg.SecretKey, cfg.BaseURL, storeName, logger.With("component", "auth_service"))
	reviewService := services.NewReviewService(reviewStore, productStore, orderStore, logger.With("component", "review_service"))
	feedbackService := services.NewFeedbackService(feedbackStore, logger.With("component", "feedback_service"))
	methodService := services.NewPaymentMethodService(methodStore, encryptor, logger.With("component", "method_service"))
	contentService := services.NewContentService(contentStore, logger.With("component", "content_service"))

	h, err := handlers.New(handlers.Dependencies{
		Config:          cfg,
		DB:              database,
		CacheProvider:   cacheProvider,
		CatalogService:  catalogService,
		CartService:     cartService,
		CheckoutService: checkoutService,
		OrderService:    orderService,
		PaymentService:  paymentService,
		CouponService:   couponService,
		CouponAdmin:     couponAdmin,
		Dashboards:      dashboardService,
		AuthService:     authService,
		ReviewService:   reviewService,
		FeedbackService: feedbackService,
		MethodService:   methodService,
		ContentService:  contentService,
		SessionManager:  sessionManager,
		Logger:          logger,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:         cfg,
		Logger:         logger,
		DB:             database,
		CacheProvider:  cacheProvider,
		SessionManager: sessionManager,
		Handlers:       h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// newGatewayRegistry wires a client for each gateway with configured credentials.
func newGatewayRegistry(cfg *config.Config) *payments.Registry {
	var gateways []payments.Gateway
	if strings.TrimSpace(cfg.PaystackSecretKey) != "" {
		gateways = append(gateways, payments.NewPaystack(cfg.PaystackSecretKey))
	}
	if strings.TrimSpace(cfg.FlutterwaveSecretKey) != "" {
		gateways = append(gateways, payments.NewFlutterwave(cfg.FlutterwaveSecretKey))
	}
	if strings.TrimSpace(cfg.StripeSecretKey) != "" {
		gateways = append(gateways, payments.NewStripe(cfg.StripeSecretKey))
	}
	return payments.NewRegistry(gateways...)
}

// newEmail builds the configured provider, or none when email is not set up.
func newEmail(cfg *config.Config) (email.Provider, *email.Renderer, error) {
	if strings.TrimSpace(cfg.EmailProvider) == "" {
		return nil, nil, nil
	}

	provider, err := email.NewProvider(email.Config{
		Provider: cfg.EmailProvider,
		APIKey:   cfg.EmailAPIKey,
		From:     cfg.EmailFrom,
		Domain:   cfg.EmailDomain,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize email provider: %w", err)
	}
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize email renderer: %w", err)
	}
	return provider, renderer, nil
}

// newEventSink always logs order events; email notifications join in when a
// provider is configured.
func newEventSink(cfg *config.Config, orders *db.OrderStore, provider email.Provider, renderer *email.Renderer, logger *slog.Logger) services.EventSink {
	logSink := services.NewLogEventSink(logger.With("component", "events"))
	if provider == nil || renderer == nil {
		return logSink
	}
	notifier := services.NewEmailNotifier(orders, provider, renderer, storeName, cfg.BaseURL, logger.With("component", "email_notifier"))
	return services.NewMultiEventSink(logSink, notifier)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case "text", "":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel}))
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
