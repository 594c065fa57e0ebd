package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
	StatusFailed     OrderStatus = "failed"
)

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentFailed        PaymentStatus = "failed"
	PaymentCancelled     PaymentStatus = "cancelled"
)

// statusTransitions is the fulfilment state machine. Cancelled, refunded, and
// failed are absorbing.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusFailed},
	StatusConfirmed:  {StatusProcessing, StatusCancelled, StatusFailed},
	StatusProcessing: {StatusShipped, StatusCancelled, StatusFailed},
	StatusShipped:    {StatusDelivered, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
}

var paymentStatusTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed, PaymentCancelled},
	PaymentPaid:    {PaymentPartiallyPaid, PaymentRefunded, PaymentCancelled},
	PaymentFailed:  {PaymentPending},
}

// CanTransitionTo reports whether the fulfilment status may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the payment status may move to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID              uuid.UUID     `json:"id"`
	OrderNumber     string        `json:"order_number"`
	UserID          int64         `json:"user_id"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	ShippingAddress Address       `json:"shipping_address"`
	BillingAddress  Address       `json:"billing_address"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	SubtotalKobo    int64         `json:"subtotal_kobo"`
	ShippingKobo    int64         `json:"shipping_kobo"`
	TaxKobo         int64         `json:"tax_kobo"`
	GiftWrapKobo    int64         `json:"gift_wrap_kobo"`
	DiscountKobo    int64         `json:"discount_kobo"`
	TotalKobo       int64         `json:"total_kobo"`
	Currency        string        `json:"currency"`
	CouponID        uuid.UUID     `json:"coupon_id"`
	CouponCode      string        `json:"coupon_code"`
	ShippingMethod  string        `json:"shipping_method"`
	TrackingNumber  string        `json:"tracking_number"`
	TrackingCarrier string        `json:"tracking_carrier"`
	CustomerNote    string        `json:"customer_note"`
	InternalNote    string        `json:"internal_note"`
	CreatedAt       time.Time     `json:"created_at"`
	PaidAt          time.Time     `json:"paid_at"`
	ConfirmedAt     time.Time     `json:"confirmed_at"`
	ShippedAt       time.Time     `json:"shipped_at"`
	DeliveredAt     time.Time     `json:"delivered_at"`
	CancelledAt     time.Time     `json:"cancelled_at"`
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CanCancel reports whether the customer may still cancel the order.
func (o *Order) CanCancel() bool {
	if o == nil {
		return false
	}
	switch o.Status {
	case StatusPending, StatusConfirmed, StatusProcessing:
		return true
	default:
		return false
	}
}

// CanDelete: only cancelled orders may be deleted.
func (o *Order) CanDelete() bool {
	return o != nil && o.Status == StatusCancelled
}

// TrackingURL builds a carrier tracking link when tracking info is present.
func (o *Order) TrackingURL() string {
	if o == nil || o.TrackingNumber == "" {
		return ""
	}
	switch o.TrackingCarrier {
	case "dhl":
		return "https://www.dhl.com/track?tracking-id=" + o.TrackingNumber
	case "gig":
		return "https://giglogistics.com/track?waybill=" + o.TrackingNumber
	default:
		return ""
	}
}

// OrderItem is an immutable snapshot of a cart line at checkout.
type OrderItem struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"order_id"`
	ProductID     uuid.UUID `json:"product_id"`
	VariantID     uuid.UUID `json:"variant_id"`
	ProductName   string    `json:"product_name"`
	ProductSKU    string    `json:"product_sku"`
	VariantLabel  string    `json:"variant_label"`
	UnitPriceKobo int64     `json:"unit_price_kobo"`
	Quantity      int       `json:"quantity"`
	TotalKobo     int64     `json:"total_kobo"`
}
