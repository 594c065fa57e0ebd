package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is owned by exactly one of UserID or SessionKey. At most one active
// cart exists per identity.
type Cart struct {
	ID             uuid.UUID `json:"id"`
	UserID         int64     `json:"user_id"`
	SessionKey     string    `json:"session_key"`
	CouponID       uuid.UUID `json:"coupon_id"`
	GiftWrap       bool      `json:"gift_wrap"`
	GiftWrapKobo   int64     `json:"gift_wrap_kobo"`
	ShippingMethod string    `json:"shipping_method"`
	ShippingKobo   int64     `json:"shipping_kobo"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Cart) HasCoupon() bool {
	return c != nil && c.CouponID != uuid.Nil
}

// CartItem is unique per (cart, product, variant); repeated adds increment quantity.
type CartItem struct {
	ID            uuid.UUID `json:"id"`
	CartID        uuid.UUID `json:"cart_id"`
	ProductID     uuid.UUID `json:"product_id"`
	VariantID     uuid.UUID `json:"variant_id"`
	ProductName   string    `json:"product_name"`
	ProductSKU    string    `json:"product_sku"`
	CategoryID    uuid.UUID `json:"category_id"`
	UnitPriceKobo int64     `json:"unit_price_kobo"`
	Quantity      int       `json:"quantity"`
	AddedAt       time.Time `json:"added_at"`
}

// LineTotal is the item subtotal in kobo.
func (i *CartItem) LineTotal() int64 {
	if i == nil {
		return 0
	}
	return i.UnitPriceKobo * int64(i.Quantity)
}

// CartTotals is the computed money summary for a cart.
type CartTotals struct {
	SubtotalKobo int64 `json:"subtotal_kobo"`
	DiscountKobo int64 `json:"discount_kobo"`
	ShippingKobo int64 `json:"shipping_kobo"`
	GiftWrapKobo int64 `json:"gift_wrap_kobo"`
	TotalKobo    int64 `json:"total_kobo"`
	ItemCount    int   `json:"item_count"`
}
