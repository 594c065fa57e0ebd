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

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
	"github.com/aniscentsapp/aniscents/internal/observability"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotYours       = errors.New("order belongs to another customer")
	ErrOrderUnavailable    = errors.New("order service unavailable")
	ErrOrderStatusConflict = errors.New("order status conflict")
)

type OrderService struct {
	orders   *db.OrderStore
	products *db.ProductStore
	payments *db.PaymentStore
	events   EventSink
	logger   *slog.Logger
	now      func() time.Time
}

func NewOrderService(orders *db.OrderStore, products *db.ProductStore, payments *db.PaymentStore, events EventSink, logger *slog.Logger) *OrderService {
	if events == nil {
		events = noopEventSink{}
	}
	return &OrderService{
		orders:   orders,
		products: products,
		payments: payments,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *OrderService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

func (s *OrderService) emit(ctx context.Context, name string, order *models.Order) {
	s.events.Emit(ctx, Event{
		Name:        name,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OccurredAt:  s.now(),
	})
}

// OrderView bundles an order with its line snapshots.
type OrderView struct {
	Order *models.Order       `json:"order"`
	Items []*models.OrderItem `json:"items"`
}

func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*OrderView, error) {
	if s == nil || s.orders == nil {
		return nil, ErrOrderUnavailable
	}
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	items, err := s.orders.Items(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return &OrderView{Order: order, Items: items}, nil
}

// GetForUser loads an order and verifies ownership.
func (s *OrderService) GetForUser(ctx context.Context, orderNumber string, userID int64) (*OrderView, error) {
	view, err := s.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if view.Order.UserID != userID {
		return nil, ErrOrderNotYours
	}
	return view, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID int64, limit int) ([]*models.Order, error) {
	if s == nil || s.orders == nil {
		return nil, ErrOrderUnavailable
	}
	return s.orders.ListByUser(ctx, userID, limit)
}

func (s *OrderService) List(ctx context.Context, status models.OrderStatus, limit int) ([]*models.Order, error) {
	if s == nil || s.orders == nil {
		return nil, ErrOrderUnavailable
	}
	return s.orders.List(ctx, status, limit)
}

// MarkProcessing moves a confirmed order into fulfilment.
func (s *OrderService) MarkProcessing(ctx context.Context, orderID uuid.UUID) error {
	if s == nil || s.orders == nil {
		return ErrOrderUnavailable
	}
	err := s.orders.MarkProcessing(ctx, orderID)
	if errors.Is(err, db.ErrInvalidStatusTransition) {
		return fmt.Errorf("%w: %v", ErrOrderStatusConflict, err)
	}
	return err
}

type ShipOrderInput struct {
	TrackingNumber string
	Carrier        string
}

// Ship marks the order shipped with tracking details and emits order.shipped.
func (s *OrderService) Ship(ctx context.Context, orderID uuid.UUID, input ShipOrderInput) error {
	if s == nil || s.orders == nil {
		return ErrOrderUnavailable
	}

	span := sentry.StartSpan(
		ctx,
		"service.order.ship",
		sentry.WithOpName("service.order"),
		sentry.WithDescription("Ship"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)

	trackingNumber := strings.TrimSpace(input.TrackingNumber)
	if trackingNumber == "" {
		return UserError{Message: "A tracking number is required"}
	}
	carrier := NormalizeCarrier(input.Carrier)
	if carrier == "" {
		return UserError{Message: "Carrier must be DHL or GIG Logistics"}
	}

	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.orders.MarkShipped(ctx, orderID, trackingNumber, carrier); err != nil {
		if errors.Is(err, db.ErrInvalidStatusTransition) {
			meter.Count("order.ship.rejected", 1, sentry.WithAttributes(
				attribute.String("reason", "invalid_status"),
			))
			return fmt.Errorf("%w: %v", ErrOrderStatusConflict, err)
		}
		return fmt.Errorf("failed to mark order shipped: %w", err)
	}

	meter.Count("order.shipped", 1, sentry.WithAttributes(
		attribute.String("carrier", carrier),
	))
	s.emit(ctx, EventOrderShipped, order)
	return nil
}

// MarkDelivered completes fulfilment and emits order.delivered.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	if s == nil || s.orders == nil {
		return ErrOrderUnavailable
	}
	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.orders.MarkDelivered(ctx, orderID); err != nil {
		if errors.Is(err, db.ErrInvalidStatusTransition) {
			return fmt.Errorf("%w: %v", ErrOrderStatusConflict, err)
		}
		return fmt.Errorf("failed to mark order delivered: %w", err)
	}
	observability.MeterFromContext(ctx).Count("order.delivered", 1)
	s.emit(ctx, EventOrderDelivered, order)
	return nil
}

// Cancel stops an unshipped order and restores the reserved stock in the
// same transaction.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) error {
	if s == nil || s.orders == nil || s.products == nil {
		return ErrOrderUnavailable
	}

	span := sentry.StartSpan(
		ctx,
		"service.order.cancel",
		sentry.WithOpName("service.order"),
		sentry.WithDescription("Cancel"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)

	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.CanCancel() {
		meter.Count("order.cancel.rejected", 1, sentry.WithAttributes(
			attribute.String("reason", "invalid_status"),
		))
		return UserError{Message: fmt.Sprintf("Order %s can no longer be cancelled", order.OrderNumber)}
	}

	items, err := s.orders.Items(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	err = db.WithTx(ctx, s.orders.Pool(), func(tx pgx.Tx) error {
		if err := s.orders.Cancel(ctx, tx, orderID); err != nil {
			return err
		}
		for _, item := range items {
			if err := s.products.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
			if item.VariantID != uuid.Nil {
				if err := s.products.RestoreVariantStock(ctx, tx, item.VariantID, item.Quantity); err != nil {
					return fmt.Errorf("failed to restore variant stock: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, db.ErrInvalidStatusTransition) {
			meter.Count("order.cancel.rejected", 1, sentry.WithAttributes(
				attribute.String("reason", "status_conflict"),
			))
			return fmt.Errorf("%w: %v", ErrOrderStatusConflict, err)
		}
		return err
	}

	meter.Count("order.cancelled", 1)
	s.emit(ctx, EventOrderCancelled, order)
	return nil
}

// CancelForUser lets a customer cancel their own unshipped order.
func (s *OrderService) CancelForUser(ctx context.Context, orderNumber string, userID int64) error {
	view, err := s.GetForUser(ctx, orderNumber, userID)
	if err != nil {
		return err
	}
	return s.Cancel(ctx, view.Order.ID)
}

// Refund flips a paid order to refunded and records the refund on its
// successful payment in the same transaction.
func (s *OrderService) Refund(ctx context.Context, orderID uuid.UUID) error {
	if s == nil || s.orders == nil || s.payments == nil {
		return ErrOrderUnavailable
	}

	order, err := s.getByID(ctx, orderID)
	if err != nil {
		return err
	}

	payments, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	var successful *models.Payment
	for _, payment := range payments {
		if payment.Status == models.TxnSuccessful {
			successful = payment
			break
		}
	}
	if successful == nil {
		return UserError{Message: fmt.Sprintf("Order %s has no successful payment to refund", order.OrderNumber)}
	}

	err = db.WithTx(ctx, s.orders.Pool(), func(tx pgx.Tx) error {
		if err := s.orders.MarkPaymentRefunded(ctx, tx, orderID); err != nil {
			return err
		}
		return s.payments.MarkRefunded(ctx, tx, successful.ID, successful.AmountKobo)
	})
	if err != nil {
		if errors.Is(err, db.ErrInvalidStatusTransition) {
			return fmt.Errorf("%w: %v", ErrOrderStatusConflict, err)
		}
		return err
	}

	observability.MeterFromContext(ctx).Count("order.refunded", 1)
	s.emit(ctx, EventOrderRefunded, order)
	return nil
}

func (s *OrderService) UpdateTracking(ctx context.Context, orderID uuid.UUID, trackingNumber, carrier string) error {
	if s == nil || s.orders == nil {
		return ErrOrderUnavailable
	}
	normalized := NormalizeCarrier(carrier)
	if normalized == "" {
		return UserError{Message: "Carrier must be DHL or GIG Logistics"}
	}
	err := s.orders.UpdateTracking(ctx, orderID, strings.TrimSpace(trackingNumber), normalized)
	if errors.Is(err, db.ErrInvalidStatusTransition) {
		return fmt.Errorf("%w: %v", ErrOrderStatusConflict, err)
	}
	return err
}

func (s *OrderService) SetInternalNote(ctx context.Context, orderID uuid.UUID, note string) error {
	if s == nil || s.orders == nil {
		return ErrOrderUnavailable
	}
	return s.orders.SetInternalNote(ctx, orderID, strings.TrimSpace(note))
}

// Delete removes a cancelled order permanently.
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	if s == nil || s.orders == nil {
		return ErrOrderUnavailable
	}
	err := s.orders.Delete(ctx, orderID)
	if errors.Is(err, db.ErrInvalidStatusTransition) {
		return fmt.Errorf("%w: %v", ErrOrderStatusConflict, err)
	}
	return err
}

func (s *OrderService) getByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}
