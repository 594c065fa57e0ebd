package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aniscentsapp/aniscents/internal/cache"
	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
	"github.com/aniscentsapp/aniscents/internal/observability"
	"github.com/aniscentsapp/aniscents/internal/payments"
)

var (
	ErrPaymentUnavailable = errors.New("payment service unavailable")
	ErrPaymentNotFound    = errors.New("payment not found")
)

// callbackSeenTTL bounds how long a processed callback reference is
// remembered for replay suppression.
const callbackSeenTTL = 24 * time.Hour

type PaymentService struct {
	payments *db.PaymentStore
	orders   *db.OrderStore
	methods  *db.PaymentMethodStore
	gateways *payments.Registry
	cache    cache.Provider
	events   EventSink
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewPaymentService(
	paymentStore *db.PaymentStore,
	orders *db.OrderStore,
	methods *db.PaymentMethodStore,
	gateways *payments.Registry,
	cacheProvider cache.Provider,
	events EventSink,
	baseURL string,
	logger *slog.Logger,
) *PaymentService {
	if events == nil {
		events = noopEventSink{}
	}
	return &PaymentService{
		payments: paymentStore,
		orders:   orders,
		methods:  methods,
		gateways: gateways,
		cache:    cacheProvider,
		events:   events,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *PaymentService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// AvailableMethods lists active payment methods that have a configured gateway.
func (s *PaymentService) AvailableMethods(ctx context.Context) ([]*models.PaymentMethod, error) {
	if s == nil || s.methods == nil || s.gateways == nil {
		return nil, ErrPaymentUnavailable
	}
	methods, err := s.methods.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	available := make([]*models.PaymentMethod, 0, len(methods))
	for _, method := range methods {
		if _, err := s.gateways.Get(method.Code); err == nil {
			available = append(available, method)
		}
	}
	return available, nil
}

// InitiateResult carries the redirect for the customer to complete payment.
type InitiateResult struct {
	Payment          *models.Payment `json:"payment"`
	AuthorizationURL string          `json:"authorization_url"`
}

// retryablePayment reports whether a new gateway attempt may start for an
// order in the given payment status. Failed orders reopen to pending first.
func retryablePayment(status models.PaymentStatus) bool {
	switch status {
	case models.PaymentPending:
		return true
	case models.PaymentFailed:
		return status.CanTransitionTo(models.PaymentPending)
	default:
		return false
	}
}

// Initiate starts a gateway transaction for an unpaid order. Each attempt
// gets its own payment row and reference, so a failed attempt can be retried.
func (s *PaymentService) Initiate(ctx context.Context, orderNumber, gatewayCode string) (*InitiateResult, error) {
	if s == nil || s.payments == nil || s.orders == nil || s.gateways == nil {
		return nil, ErrPaymentUnavailable
	}

	span := sentry.StartSpan(
		ctx,
		"service.payment.initiate",
		sentry.WithOpName("service.payment"),
		sentry.WithDescription("Initiate"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)

	gateway, err := s.gateways.Get(gatewayCode)
	if err != nil {
		return nil, UserError{Message: "That payment method is not available"}
	}

	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !retryablePayment(order.PaymentStatus) {
		return nil, UserError{Message: fmt.Sprintf("Order %s is not awaiting payment", order.OrderNumber)}
	}
	if order.PaymentStatus == models.PaymentFailed {
		if err := s.orders.ResetPaymentPending(ctx, order.ID); err != nil {
			if errors.Is(err, db.ErrInvalidStatusTransition) {
				return nil, UserError{Message: fmt.Sprintf("Order %s is not awaiting payment", order.OrderNumber)}
			}
			return nil, fmt.Errorf("failed to reopen order for payment: %w", err)
		}
		order.PaymentStatus = models.PaymentPending
	}

	payment := &models.Payment{
		OrderID:    order.ID,
		Gateway:    gateway.Code(),
		Reference:  paymentReference(order.OrderNumber),
		AmountKobo: order.TotalKobo,
		Currency:   order.Currency,
		Status:     models.TxnInitiated,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	initResult, err := gateway.Initialize(ctx, payments.InitRequest{
		Reference:   payment.Reference,
		Email:       order.CustomerEmail,
		AmountKobo:  order.TotalKobo,
		Currency:    order.Currency,
		CallbackURL: s.callbackURL(gateway.Code(), payment.Reference),
		Description: "Order " + order.OrderNumber,
	})
	if err != nil {
		meter.Count("payment.initiate.failed", 1, sentry.WithAttributes(
			attribute.String("gateway", gateway.Code()),
		))
		if markErr := s.payments.MarkFailed(ctx, payment.ID, "gateway initialization failed"); markErr != nil {
			s.loggerFromContext(ctx).Warn("failed to mark payment failed after init error",
				"payment_id", payment.ID, "error", markErr)
		}
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	if initResult.GatewayReference != "" && initResult.GatewayReference != payment.Reference {
		if err := s.payments.SetGatewayReference(ctx, payment.ID, initResult.GatewayReference); err != nil {
			return nil, fmt.Errorf("failed to store gateway reference: %w", err)
		}
		payment.GatewayReference = initResult.GatewayReference
	}

	meter.Count("payment.initiated", 1, sentry.WithAttributes(
		attribute.String("gateway", gateway.Code()),
	))
	s.loggerFromContext(ctx).Info("payment initiated",
		"order_number", order.OrderNumber,
		"gateway", gateway.Code(),
		"reference", payment.Reference,
	)

	return &InitiateResult{
		Payment:          payment,
		AuthorizationURL: initResult.AuthorizationURL,
	}, nil
}

// CallbackResult reports what a gateway callback resolved to.
type CallbackResult struct {
	OrderNumber string                   `json:"order_number"`
	Status      models.TransactionStatus `json:"status"`
	Replayed    bool                     `json:"replayed"`
}

// HandleCallback verifies a returning gateway redirect with the gateway and
// settles the payment. Replayed callbacks are no-ops: first the cache check,
// then the conditional status updates make the settlement idempotent either way.
func (s *PaymentService) HandleCallback(ctx context.Context, gatewayCode, reference string) (*CallbackResult, error) {
	if s == nil || s.payments == nil || s.orders == nil || s.gateways == nil {
		return nil, ErrPaymentUnavailable
	}

	span := sentry.StartSpan(
		ctx,
		"service.payment.handle_callback",
		sentry.WithOpName("service.payment"),
		sentry.WithDescription("HandleCallback"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := s.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	meter.Count("payment.callback.received", 1, sentry.WithAttributes(
		attribute.String("gateway", gatewayCode),
	))

	gateway, err := s.gateways.Get(gatewayCode)
	if err != nil {
		return nil, ErrPaymentNotFound
	}

	payment, err := s.payments.GetByReference(ctx, reference)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	order, err := s.orders.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	seenKey := cache.CallbackKey(gatewayCode, reference)
	if s.cache != nil {
		if _, err := s.cache.Get(ctx, seenKey); err == nil {
			meter.Count("payment.callback.replayed", 1, sentry.WithAttributes(
				attribute.String("gateway", gatewayCode),
			))
			return &CallbackResult{OrderNumber: order.OrderNumber, Status: payment.Status, Replayed: true}, nil
		}
	}
	if payment.Status == models.TxnSuccessful {
		return &CallbackResult{OrderNumber: order.OrderNumber, Status: payment.Status, Replayed: true}, nil
	}

	verify, err := gateway.Verify(ctx, payment.Reference, payment.GatewayReference)
	if err != nil {
		meter.Count("payment.callback.verify_failed", 1, sentry.WithAttributes(
			attribute.String("gateway", gatewayCode),
		))
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}

	switch verify.Status {
	case payments.VerifySuccess:
		if verify.AmountKobo != payment.AmountKobo {
			logger.Error("gateway amount mismatch",
				"reference", payment.Reference,
				"expected_kobo", payment.AmountKobo,
				"got_kobo", verify.AmountKobo,
			)
			meter.Count("payment.callback.amount_mismatch", 1, sentry.WithAttributes(
				attribute.String("gateway", gatewayCode),
			))
			return nil, fmt.Errorf("gateway amount %d does not match expected %d", verify.AmountKobo, payment.AmountKobo)
		}

		err = db.WithTx(ctx, s.orders.Pool(), func(tx pgx.Tx) error {
			if err := s.payments.MarkSuccessful(ctx, tx, payment.ID, verify.GatewayReference, verify.CardLast4, verify.CardBrand); err != nil {
				return err
			}
			return s.orders.MarkPaid(ctx, tx, order.ID)
		})
		if errors.Is(err, db.ErrInvalidStatusTransition) {
			// Lost the race against a concurrent callback. Treat as replay.
			return &CallbackResult{OrderNumber: order.OrderNumber, Status: models.TxnSuccessful, Replayed: true}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to settle payment: %w", err)
		}

		s.rememberCallback(ctx, seenKey)
		meter.Count("payment.succeeded", 1, sentry.WithAttributes(
			attribute.String("gateway", gatewayCode),
		))
		logger.Info("payment confirmed",
			"order_number", order.OrderNumber,
			"gateway", gatewayCode,
			"reference", payment.Reference,
		)
		s.events.Emit(ctx, Event{
			Name:        EventOrderPaid,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			OccurredAt:  s.now(),
		})
		return &CallbackResult{OrderNumber: order.OrderNumber, Status: models.TxnSuccessful}, nil

	case payments.VerifyFailed:
		reason := verify.FailureReason
		if reason == "" {
			reason = "declined by gateway"
		}
		if err := s.payments.MarkFailed(ctx, payment.ID, reason); err != nil && !errors.Is(err, db.ErrInvalidStatusTransition) {
			return nil, fmt.Errorf("failed to mark payment failed: %w", err)
		}
		if err := s.orders.MarkPaymentFailed(ctx, order.ID); err != nil && !errors.Is(err, db.ErrInvalidStatusTransition) {
			return nil, fmt.Errorf("failed to mark order payment failed: %w", err)
		}

		s.rememberCallback(ctx, seenKey)
		meter.Count("payment.failed", 1, sentry.WithAttributes(
			attribute.String("gateway", gatewayCode),
		))
		s.events.Emit(ctx, Event{
			Name:        EventPaymentFailed,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			OccurredAt:  s.now(),
		})
		return &CallbackResult{OrderNumber: order.OrderNumber, Status: models.TxnFailed}, nil

	default:
		return &CallbackResult{OrderNumber: order.OrderNumber, Status: models.TxnPending}, nil
	}
}

func (s *PaymentService) rememberCallback(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, "1", callbackSeenTTL); err != nil {
		s.loggerFromContext(ctx).Warn("failed to record callback key", "key", key, "error", err)
	}
}

func (s *PaymentService) callbackURL(gatewayCode, reference string) string {
	return fmt.Sprintf("%s/orders/pay/%s/callback?reference=%s", s.baseURL, gatewayCode, reference)
}

// paymentReference derives a unique per-attempt reference from the order number.
func paymentReference(orderNumber string) string {
	return orderNumber + "-" + strings.ToUpper(uuid.NewString()[:8])
}
