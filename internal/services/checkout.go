package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
	"github.com/aniscentsapp/aniscents/internal/observability"
)

var ErrCheckoutUnavailable = errors.New("checkout service unavailable")

type CheckoutService struct {
	carts       *db.CartStore
	products    *db.ProductStore
	couponStore *db.CouponStore
	orders      *db.OrderStore
	cartService *CartService
	events      EventSink
	orderPrefix string
	currency    string
	taxRateBps  int
	logger      *slog.Logger
	now         func() time.Time
}

func NewCheckoutService(
	carts *db.CartStore,
	products *db.ProductStore,
	couponStore *db.CouponStore,
	orders *db.OrderStore,
	cartService *CartService,
	events EventSink,
	orderPrefix, currency string,
	taxRateBps int,
	logger *slog.Logger,
) *CheckoutService {
	if events == nil {
		events = noopEventSink{}
	}
	if orderPrefix == "" {
		orderPrefix = "ANIS"
	}
	if currency == "" {
		currency = "NGN"
	}
	return &CheckoutService{
		carts:       carts,
		products:    products,
		couponStore: couponStore,
		orders:      orders,
		cartService: cartService,
		events:      events,
		orderPrefix: orderPrefix,
		currency:    currency,
		taxRateBps:  taxRateBps,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *CheckoutService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type CheckoutInput struct {
	CustomerEmail   string
	CustomerName    string
	CustomerPhone   string
	ShippingAddress models.Address
	BillingAddress  models.Address
	CustomerNote    string
}

// Checkout converts the cart into an order in one transaction: the order and
// its item snapshots are written, stock is decremented, the coupon redemption
// is counted, and the cart is emptied and deactivated. Any failure rolls the
// whole conversion back.
func (s *CheckoutService) Checkout(ctx context.Context, cart *models.Cart, identity CartIdentity, input CheckoutInput) (*models.Order, error) {
	if s == nil || s.carts == nil || s.orders == nil || s.cartService == nil {
		return nil, ErrCheckoutUnavailable
	}

	span := sentry.StartSpan(
		ctx,
		"service.checkout.checkout",
		sentry.WithOpName("service.checkout"),
		sentry.WithDescription("Checkout"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := s.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	recordFailure := func(reason string) {
		meter.Count("checkout.failed", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}
	meter.Count("checkout.started", 1)

	if err := validateCheckoutInput(input); err != nil {
		recordFailure("invalid_input")
		return nil, err
	}

	view, err := s.cartService.View(ctx, cart, identity)
	if err != nil {
		recordFailure("cart_load_failed")
		return nil, err
	}
	if len(view.Items) == 0 {
		recordFailure("empty_cart")
		return nil, UserError{Message: "Your cart is empty"}
	}

	order := &models.Order{
		OrderNumber:     s.generateOrderNumber(),
		UserID:          identity.UserID,
		CustomerEmail:   strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  billingOrShipping(input),
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
		SubtotalKobo:    view.Totals.SubtotalKobo,
		ShippingKobo:    view.Totals.ShippingKobo,
		TaxKobo:         taxKobo(view.Totals.SubtotalKobo-view.Totals.DiscountKobo, s.taxRateBps),
		GiftWrapKobo:    view.Totals.GiftWrapKobo,
		DiscountKobo:    view.Totals.DiscountKobo,
		Currency:        s.currency,
		ShippingMethod:  cart.ShippingMethod,
		CustomerNote:    strings.TrimSpace(input.CustomerNote),
	}
	order.TotalKobo = view.Totals.TotalKobo + order.TaxKobo
	if view.Coupon != nil {
		order.CouponID = view.Coupon.ID
		order.CouponCode = view.Coupon.Code
	}

	err = db.WithTx(ctx, s.orders.Pool(), func(tx pgx.Tx) error {
		if err := s.orders.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range view.Items {
			item := &models.OrderItem{
				OrderID:       order.ID,
				ProductID:     line.ProductID,
				VariantID:     line.VariantID,
				ProductName:   line.ProductName,
				ProductSKU:    line.ProductSKU,
				VariantLabel:  s.variantLabel(ctx, line),
				UnitPriceKobo: line.UnitPriceKobo,
				Quantity:      line.Quantity,
				TotalKobo:     line.LineTotal(),
			}
			if err := s.orders.InsertItem(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to snapshot order item: %w", err)
			}
			if err := s.products.DecrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, db.ErrInsufficientStock) {
					return UserError{Message: fmt.Sprintf("%s just sold out at that quantity", line.ProductName)}
				}
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
			if line.VariantID != uuid.Nil {
				if err := s.products.DecrementVariantStock(ctx, tx, line.VariantID, line.Quantity); err != nil {
					if errors.Is(err, db.ErrInsufficientStock) {
						return UserError{Message: fmt.Sprintf("%s just sold out in that size", line.ProductName)}
					}
					return fmt.Errorf("failed to decrement variant stock: %w", err)
				}
			}
		}

		if view.Coupon != nil {
			if err := s.couponStore.Redeem(ctx, tx, view.Coupon.ID); err != nil {
				if errors.Is(err, db.ErrCouponExhausted) {
					return UserError{Message: fmt.Sprintf("Coupon %s has reached its maximum usage limit", view.Coupon.Code)}
				}
				return fmt.Errorf("failed to redeem coupon: %w", err)
			}
			usage := &models.CouponUsage{
				CouponID: view.Coupon.ID,
				UserID:   identity.UserID,
				OrderID:  order.ID,
			}
			if err := s.couponStore.RecordUsage(ctx, tx, usage); err != nil {
				return fmt.Errorf("failed to record coupon usage: %w", err)
			}
		}

		if err := s.carts.ClearItems(ctx, tx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return s.carts.Deactivate(ctx, tx, cart.ID)
	})
	if err != nil {
		var userErr UserError
		if errors.As(err, &userErr) {
			recordFailure("rejected")
			return nil, err
		}
		recordFailure("transaction_failed")
		return nil, err
	}

	meter.Count("order.created", 1)
	logger.Info("order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"total_kobo", order.TotalKobo,
		"items", len(view.Items),
	)
	s.events.Emit(ctx, Event{
		Name:        EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OccurredAt:  s.now(),
	})

	return order, nil
}

func validateCheckoutInput(input CheckoutInput) error {
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return UserError{Message: "An email address is required"}
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return UserError{Message: "A name is required"}
	}
	addr := input.ShippingAddress
	if strings.TrimSpace(addr.Line1) == "" || strings.TrimSpace(addr.City) == "" || strings.TrimSpace(addr.State) == "" {
		return UserError{Message: "A complete shipping address is required"}
	}
	return nil
}

func billingOrShipping(input CheckoutInput) models.Address {
	empty := models.Address{}
	if input.BillingAddress == empty {
		return input.ShippingAddress
	}
	return input.BillingAddress
}

// taxKobo applies a basis-point rate to the discounted subtotal, rounding
// half-up.
func taxKobo(taxableKobo int64, rateBps int) int64 {
	if taxableKobo <= 0 || rateBps <= 0 {
		return 0
	}
	return (taxableKobo*int64(rateBps) + 5000) / 10000
}

// generateOrderNumber builds PREFIX-YYYYMMDD-NNNNNN. The random suffix keeps
// numbers unguessable; the unique index catches the rare collision.
func (s *CheckoutService) generateOrderNumber() string {
	suffix, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		suffix = big.NewInt(s.now().UnixNano() % 1000000)
	}
	return fmt.Sprintf("%s-%s-%06d", s.orderPrefix, s.now().Format("20060102"), suffix.Int64())
}

func (s *CheckoutService) variantLabel(ctx context.Context, line *models.CartItem) string {
	if line.VariantID == uuid.Nil {
		return ""
	}
	variant, err := s.products.GetVariant(ctx, line.VariantID)
	if err != nil {
		s.loggerFromContext(ctx).Warn("failed to load variant for order snapshot",
			"variant_id", line.VariantID, "error", err)
		return ""
	}
	if variant.Concentration != "" {
		return fmt.Sprintf("%dml %s", variant.SizeML, variant.Concentration)
	}
	return fmt.Sprintf("%dml", variant.SizeML)
}
