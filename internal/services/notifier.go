package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/email"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
)

// EmailNotifier turns order lifecycle events into customer emails. Delivery
// failures are logged, never propagated into the emitting transition.
type EmailNotifier struct {
	orders    *db.OrderStore
	provider  email.Provider
	renderer  *email.Renderer
	storeName string
	storeURL  string
	logger    *slog.Logger
}

func NewEmailNotifier(orders *db.OrderStore, provider email.Provider, renderer *email.Renderer, storeName, storeURL string, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		orders:    orders,
		provider:  provider,
		renderer:  renderer,
		storeName: storeName,
		storeURL:  strings.TrimRight(storeURL, "/"),
		logger:    logger,
	}
}

func (n *EmailNotifier) Emit(ctx context.Context, event Event) {
	if n == nil || n.provider == nil || n.renderer == nil || n.orders == nil {
		return
	}

	logger := logging.FromContext(ctx, n.logger)

	var send func(context.Context, email.Provider, *email.OrderInfo) error
	switch event.Name {
	case EventOrderPaid:
		send = email.SendOrderConfirmation
	case EventOrderShipped:
		send = email.SendOrderShipped
	case EventOrderDelivered:
		send = email.SendOrderDelivered
	default:
		return
	}

	order, err := n.orders.GetByID(ctx, event.OrderID)
	if err != nil {
		logger.Warn("notifier failed to load order", "order_id", event.OrderID, "error", err)
		return
	}
	items, err := n.orders.Items(ctx, order.ID)
	if err != nil {
		logger.Warn("notifier failed to load order items", "order_id", event.OrderID, "error", err)
		return
	}

	if err := send(ctx, n.provider, n.buildOrderInfo(order, items)); err != nil {
		logger.Warn("failed to send order email",
			"event", event.Name,
			"order_number", order.OrderNumber,
			"error", err,
		)
		return
	}
	logger.Info("order email sent", "event", event.Name, "order_number", order.OrderNumber)
}

func (n *EmailNotifier) buildOrderInfo(order *models.Order, items []*models.OrderItem) *email.OrderInfo {
	info := &email.OrderInfo{
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		StoreName:       n.storeName,
		StoreURL:        n.storeURL,
		ShippingAddress: formatAddress(order.ShippingAddress),
		TrackingNumber:  order.TrackingNumber,
		TrackingURL:     order.TrackingURL(),
		TrackingCarrier: CanonicalCarrierName(order.TrackingCarrier),
		OrderDate:       order.CreatedAt.Format("January 2, 2006"),
		Subtotal:        FormatKobo(order.SubtotalKobo),
		Shipping:        FormatKobo(order.ShippingKobo),
		Total:           FormatKobo(order.TotalKobo),
	}
	if order.GiftWrapKobo > 0 {
		info.GiftWrap = FormatKobo(order.GiftWrapKobo)
	}
	if order.DiscountKobo > 0 {
		info.Discount = FormatKobo(order.DiscountKobo)
	}

	for _, item := range items {
		info.Items = append(info.Items, email.OrderItem{
			Name:       item.ProductName,
			SKU:        item.ProductSKU,
			Variant:    item.VariantLabel,
			Quantity:   item.Quantity,
			UnitPrice:  FormatKobo(item.UnitPriceKobo),
			TotalPrice: FormatKobo(item.TotalKobo),
		})
	}
	return info
}

func formatAddress(addr models.Address) string {
	parts := make([]string, 0, 5)
	for _, part := range []string{addr.Line1, addr.Line2, addr.City, addr.State, addr.Country} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	if addr.PostalCode != "" && len(parts) > 0 {
		parts[len(parts)-1] = fmt.Sprintf("%s %s", parts[len(parts)-1], addr.PostalCode)
	}
	return strings.Join(parts, ", ")
}
