package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/models"
)

type fakeCouponStore struct {
	coupon   *models.Coupon
	usage    int
	usageErr error
}

func (f *fakeCouponStore) GetByCode(context.Context, string) (*models.Coupon, error) {
	return f.coupon, nil
}

func (f *fakeCouponStore) GetByID(context.Context, uuid.UUID) (*models.Coupon, error) {
	return f.coupon, nil
}

func (f *fakeCouponStore) UsageCountByUser(context.Context, uuid.UUID, int64) (int, error) {
	return f.usage, f.usageErr
}

type fakePaidOrderChecker struct {
	hasPaid bool
	err     error
}

func (f *fakePaidOrderChecker) HasPaidOrders(context.Context, int64) (bool, error) {
	return f.hasPaid, f.err
}

func newTestCouponService(usage int, hasPaid bool) *CouponService {
	return &CouponService{
		coupons: &fakeCouponStore{usage: usage},
		orders:  &fakePaidOrderChecker{hasPaid: hasPaid},
		now:     func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func validCoupon() *models.Coupon {
	return &models.Coupon{
		ID:       uuid.New(),
		Code:     "WELCOME10",
		Type:     models.CouponPercentage,
		Value:    10,
		IsActive: true,
	}
}

func TestCouponService_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *models.Coupon)
		cc      CouponContext
		usage   int
		hasPaid bool
		wantErr string
	}{
		{
			name:   "valid coupon",
			mutate: func(c *models.Coupon) {},
		},
		{
			name:    "inactive",
			mutate:  func(c *models.Coupon) { c.IsActive = false },
			wantErr: "no longer active",
		},
		{
			name: "not started yet",
			mutate: func(c *models.Coupon) {
				c.ValidFrom = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
			},
			wantErr: "not valid yet",
		},
		{
			name: "expired",
			mutate: func(c *models.Coupon) {
				c.ValidUntil = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			},
			wantErr: "has expired",
		},
		{
			name: "global cap reached",
			mutate: func(c *models.Coupon) {
				c.MaxUses = 1
				c.TimesUsed = 1
			},
			wantErr: "maximum usage limit",
		},
		{
			name: "below minimum purchase",
			mutate: func(c *models.Coupon) {
				c.MinPurchaseKobo = 2000000
			},
			cc:      CouponContext{SubtotalKobo: 1300000},
			wantErr: "minimum purchase of ₦20000",
		},
		{
			name: "per-user cap reached",
			mutate: func(c *models.Coupon) {
				c.MaxUsesPerUser = 2
			},
			cc:      CouponContext{UserID: 7},
			usage:   2,
			wantErr: "maximum number of times",
		},
		{
			name: "first order only rejects guests",
			mutate: func(c *models.Coupon) {
				c.FirstOrderOnly = true
			},
			wantErr: "first order",
		},
		{
			name: "first order only rejects returning customers",
			mutate: func(c *models.Coupon) {
				c.FirstOrderOnly = true
			},
			cc:      CouponContext{UserID: 7},
			hasPaid: true,
			wantErr: "first order",
		},
		{
			name: "first order only allows new customers",
			mutate: func(c *models.Coupon) {
				c.FirstOrderOnly = true
			},
			cc: CouponContext{UserID: 7},
		},
		{
			name: "inactive wins over expired",
			mutate: func(c *models.Coupon) {
				c.IsActive = false
				c.ValidUntil = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			},
			wantErr: "no longer active",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := newTestCouponService(tt.usage, tt.hasPaid)
			coupon := validCoupon()
			tt.mutate(coupon)

			err := service.Validate(t.Context(), coupon, tt.cc)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			var userErr UserError
			if !errors.As(err, &userErr) {
				t.Fatalf("expected UserError, got %v", err)
			}
			if !strings.Contains(userErr.Message, tt.wantErr) {
				t.Errorf("expected message containing %q, got %q", tt.wantErr, userErr.Message)
			}
		})
	}
}

func TestCouponService_Discount(t *testing.T) {
	t.Parallel()

	productA := uuid.New()
	productB := uuid.New()
	categoryX := uuid.New()

	items := []*models.CartItem{
		{ProductID: productA, CategoryID: categoryX, UnitPriceKobo: 650000, Quantity: 2},
		{ProductID: productB, UnitPriceKobo: 100000, Quantity: 1},
	}
	// subtotal: 1_400_000 kobo

	tests := []struct {
		name   string
		coupon *models.Coupon
		items  []*models.CartItem
		want   int64
	}{
		{
			name:   "percentage",
			coupon: &models.Coupon{Type: models.CouponPercentage, Value: 10},
			items:  items,
			want:   140000,
		},
		{
			name:   "percentage capped",
			coupon: &models.Coupon{Type: models.CouponPercentage, Value: 10, MaxDiscountKobo: 100000},
			items:  items,
			want:   100000,
		},
		{
			name:   "percentage rounds half up",
			coupon: &models.Coupon{Type: models.CouponPercentage, Value: 10},
			items:  []*models.CartItem{{ProductID: productA, UnitPriceKobo: 15, Quantity: 1}},
			want:   2,
		},
		{
			name:   "fixed",
			coupon: &models.Coupon{Type: models.CouponFixed, Value: 50000},
			items:  items,
			want:   50000,
		},
		{
			name:   "fixed clamped to eligible subtotal",
			coupon: &models.Coupon{Type: models.CouponFixed, Value: 5000000},
			items:  items,
			want:   1400000,
		},
		{
			name: "targeted by product",
			coupon: &models.Coupon{
				Type: models.CouponPercentage, Value: 50,
				ProductIDs: []uuid.UUID{productB},
			},
			items: items,
			want:  50000,
		},
		{
			name: "targeted by category",
			coupon: &models.Coupon{
				Type: models.CouponPercentage, Value: 10,
				CategoryIDs: []uuid.UUID{categoryX},
			},
			items: items,
			want:  130000,
		},
		{
			name: "targeted with no eligible lines",
			coupon: &models.Coupon{
				Type: models.CouponPercentage, Value: 10,
				ProductIDs: []uuid.UUID{uuid.New()},
			},
			items: items,
			want:  0,
		},
		{
			name:   "empty cart",
			coupon: &models.Coupon{Type: models.CouponPercentage, Value: 10},
			want:   0,
		},
	}

	service := &CouponService{}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := service.Discount(tt.coupon, tt.items); got != tt.want {
				t.Errorf("Discount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatKobo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount int64
		want   string
	}{
		{0, "₦0"},
		{100, "₦1"},
		{1300000, "₦13000"},
		{4550, "₦45.50"},
		{-250, "-₦2.50"},
	}

	for _, tt := range tests {
		if got := FormatKobo(tt.amount); got != tt.want {
			t.Errorf("FormatKobo(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
