package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/models"
)

func TestCouponBodyToCoupon(t *testing.T) {
	t.Parallel()

	productID := uuid.New()

	body := couponBody{
		Code:            "LAUNCH20",
		Description:     "Launch discount",
		Type:            "percentage",
		Value:           20,
		MinPurchaseKobo: 500000,
		MaxDiscountKobo: 200000,
		MaxUses:         100,
		MaxUsesPerUser:  1,
		ValidFrom:       "2026-01-01T00:00:00Z",
		ValidUntil:      "2026-02-01T00:00:00Z",
		IsActive:        true,
		FirstOrderOnly:  true,
		ProductIDs:      []string{productID.String()},
	}

	coupon, err := body.toCoupon()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if coupon.Code != "LAUNCH20" {
		t.Fatalf("expected code LAUNCH20, got %q", coupon.Code)
	}
	if coupon.Type != models.CouponPercentage {
		t.Fatalf("expected percentage type, got %q", coupon.Type)
	}
	if coupon.Value != 20 {
		t.Fatalf("expected value 20, got %d", coupon.Value)
	}
	if len(coupon.ProductIDs) != 1 || coupon.ProductIDs[0] != productID {
		t.Fatalf("expected product id %s, got %v", productID, coupon.ProductIDs)
	}
	wantFrom := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !coupon.ValidFrom.Equal(wantFrom) {
		t.Fatalf("expected valid_from %v, got %v", wantFrom, coupon.ValidFrom)
	}
	if !coupon.FirstOrderOnly {
		t.Fatal("expected first_order_only to carry over")
	}
}

func TestCouponBodyToCoupon_RejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body couponBody
	}{
		{
			name: "malformed product id",
			body: couponBody{Code: "X", ProductIDs: []string{"not-a-uuid"}},
		},
		{
			name: "malformed category id",
			body: couponBody{Code: "X", CategoryIDs: []string{"123"}},
		},
		{
			name: "malformed valid_from",
			body: couponBody{Code: "X", ValidFrom: "yesterday"},
		},
		{
			name: "malformed valid_until",
			body: couponBody{Code: "X", ValidUntil: "01/02/2026"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tt.body.toCoupon(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
