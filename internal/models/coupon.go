package models

import (
	"time"

	"github.com/google/uuid"
)

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

// Coupon value semantics: percentage coupons hold a percent in Value
// (0 < Value <= 100); fixed coupons hold an amount in kobo.
// Zero MaxUses / MaxUsesPerUser means unlimited.
type Coupon struct {
	ID              uuid.UUID   `json:"id"`
	Code            string      `json:"code"`
	Description     string      `json:"description"`
	Type            CouponType  `json:"type"`
	Value           int64       `json:"value"`
	MinPurchaseKobo int64       `json:"min_purchase_kobo"`
	MaxDiscountKobo int64       `json:"max_discount_kobo"`
	MaxUses         int         `json:"max_uses"`
	MaxUsesPerUser  int         `json:"max_uses_per_user"`
	TimesUsed       int         `json:"times_used"`
	ValidFrom       time.Time   `json:"valid_from"`
	ValidUntil      time.Time   `json:"valid_until"`
	IsActive        bool        `json:"is_active"`
	FirstOrderOnly  bool        `json:"first_order_only"`
	ProductIDs      []uuid.UUID `json:"product_ids"`
	CategoryIDs     []uuid.UUID `json:"category_ids"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Targeted reports whether the coupon is restricted to specific products or categories.
func (c *Coupon) Targeted() bool {
	return c != nil && (len(c.ProductIDs) > 0 || len(c.CategoryIDs) > 0)
}

// AppliesTo reports whether a cart line falls under the coupon's targeting.
// Untargeted coupons apply to every line.
func (c *Coupon) AppliesTo(productID, categoryID uuid.UUID) bool {
	if c == nil {
		return false
	}
	if !c.Targeted() {
		return true
	}
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	for _, id := range c.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// CouponUsage records one redemption, written inside the checkout transaction.
type CouponUsage struct {
	ID       uuid.UUID `json:"id"`
	CouponID uuid.UUID `json:"coupon_id"`
	UserID   int64     `json:"user_id"`
	OrderID  uuid.UUID `json:"order_id"`
	UsedAt   time.Time `json:"used_at"`
}
