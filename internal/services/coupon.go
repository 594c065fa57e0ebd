package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/models"
)

// UserError carries a message safe to show to the customer.
type UserError struct {
	Message string
}

func (e UserError) Error() string {
	return e.Message
}

var ErrCouponNotFound = errors.New("coupon not found")

type couponFinder interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	UsageCountByUser(ctx context.Context, couponID uuid.UUID, userID int64) (int, error)
}

type paidOrderChecker interface {
	HasPaidOrders(ctx context.Context, userID int64) (bool, error)
}

type CouponService struct {
	coupons couponFinder
	orders  paidOrderChecker
	logger  *slog.Logger
	now     func() time.Time
}

func NewCouponService(couponStore *db.CouponStore, orderStore *db.OrderStore, logger *slog.Logger) *CouponService {
	return &CouponService{
		coupons: couponStore,
		orders:  orderStore,
		logger:  logger,
		now:     time.Now,
	}
}

// Lookup finds a coupon by code.
func (s *CouponService) Lookup(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	return coupon, nil
}

func (s *CouponService) couponByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	return coupon, nil
}

// CouponContext carries everything the eligibility checks need beyond the
// coupon itself. UserID zero means a guest.
type CouponContext struct {
	UserID       int64
	SubtotalKobo int64
}

// Validate runs the eligibility checks in a fixed order and returns a
// UserError naming the first failed check.
func (s *CouponService) Validate(ctx context.Context, coupon *models.Coupon, cc CouponContext) error {
	if coupon == nil {
		return ErrCouponNotFound
	}

	if !coupon.IsActive {
		return UserError{Message: fmt.Sprintf("Coupon %s is no longer active", coupon.Code)}
	}

	now := s.now()
	if !coupon.ValidFrom.IsZero() && now.Before(coupon.ValidFrom) {
		return UserError{Message: fmt.Sprintf("Coupon %s is not valid yet", coupon.Code)}
	}
	if !coupon.ValidUntil.IsZero() && now.After(coupon.ValidUntil) {
		return UserError{Message: fmt.Sprintf("Coupon %s has expired", coupon.Code)}
	}

	if coupon.MaxUses > 0 && coupon.TimesUsed >= coupon.MaxUses {
		return UserError{Message: fmt.Sprintf("Coupon %s has reached its maximum usage limit", coupon.Code)}
	}

	if coupon.MinPurchaseKobo > 0 && cc.SubtotalKobo < coupon.MinPurchaseKobo {
		return UserError{Message: fmt.Sprintf(
			"Coupon %s requires a minimum purchase of %s", coupon.Code, FormatKobo(coupon.MinPurchaseKobo))}
	}

	if coupon.MaxUsesPerUser > 0 && cc.UserID > 0 {
		used, err := s.coupons.UsageCountByUser(ctx, coupon.ID, cc.UserID)
		if err != nil {
			return fmt.Errorf("failed to count coupon usage: %w", err)
		}
		if used >= coupon.MaxUsesPerUser {
			return UserError{Message: fmt.Sprintf("You have already used coupon %s the maximum number of times", coupon.Code)}
		}
	}

	if coupon.FirstOrderOnly {
		if cc.UserID <= 0 {
			return UserError{Message: fmt.Sprintf("Coupon %s is for registered customers' first order only", coupon.Code)}
		}
		hasPaid, err := s.orders.HasPaidOrders(ctx, cc.UserID)
		if err != nil {
			return fmt.Errorf("failed to check order history: %w", err)
		}
		if hasPaid {
			return UserError{Message: fmt.Sprintf("Coupon %s is only valid on your first order", coupon.Code)}
		}
	}

	return nil
}

// Discount computes the discount in kobo for the given cart lines. Targeted
// coupons only count eligible lines; the result never exceeds the eligible
// subtotal. Percentage amounts round half up.
func (s *CouponService) Discount(coupon *models.Coupon, items []*models.CartItem) int64 {
	if coupon == nil || len(items) == 0 {
		return 0
	}

	var eligible int64
	for _, item := range items {
		if coupon.AppliesTo(item.ProductID, item.CategoryID) {
			eligible += item.LineTotal()
		}
	}
	if eligible <= 0 {
		return 0
	}

	var discount int64
	switch coupon.Type {
	case models.CouponPercentage:
		discount = (eligible*coupon.Value + 50) / 100
		if coupon.MaxDiscountKobo > 0 && discount > coupon.MaxDiscountKobo {
			discount = coupon.MaxDiscountKobo
		}
	case models.CouponFixed:
		discount = coupon.Value
		if coupon.MaxDiscountKobo > 0 && discount > coupon.MaxDiscountKobo {
			discount = coupon.MaxDiscountKobo
		}
	default:
		return 0
	}

	if discount > eligible {
		discount = eligible
	}
	return discount
}

// FormatKobo renders a kobo amount as naira for customer-facing messages.
func FormatKobo(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if amount%100 == 0 {
		return fmt.Sprintf("%s₦%d", sign, amount/100)
	}
	return fmt.Sprintf("%s₦%d.%02d", sign, amount/100, amount%100)
}
