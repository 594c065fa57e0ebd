package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var ErrCouponAdminUnavailable = errors.New("coupon admin service unavailable")

// CouponAdminService covers the staff side of coupons: creating, editing and
// retiring codes. Customer-facing validation lives in CouponService.
type CouponAdminService struct {
	coupons *db.CouponStore
	logger  *slog.Logger
}

func NewCouponAdminService(coupons *db.CouponStore, logger *slog.Logger) *CouponAdminService {
	return &CouponAdminService{coupons: coupons, logger: logger}
}

func (s *CouponAdminService) List(ctx context.Context) ([]*models.Coupon, error) {
	if s == nil || s.coupons == nil {
		return nil, ErrCouponAdminUnavailable
	}
	return s.coupons.List(ctx)
}

func (s *CouponAdminService) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	if s == nil || s.coupons == nil {
		return nil, ErrCouponAdminUnavailable
	}
	coupon, err := s.coupons.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrCouponNotFound
	}
	return coupon, err
}

// Save validates and upserts a coupon. The code is stored uppercase so
// lookups are case-insensitive.
func (s *CouponAdminService) Save(ctx context.Context, coupon *models.Coupon) error {
	if s == nil || s.coupons == nil {
		return ErrCouponAdminUnavailable
	}
	if err := validateCoupon(coupon); err != nil {
		return err
	}
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))

	if coupon.ID == uuid.Nil {
		if err := s.coupons.Create(ctx, coupon); err != nil {
			if errors.Is(err, db.ErrDuplicateCode) {
				return UserError{Message: fmt.Sprintf("A coupon with code %s already exists", coupon.Code)}
			}
			return fmt.Errorf("failed to create coupon: %w", err)
		}
		return nil
	}
	if err := s.coupons.Update(ctx, coupon); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	return nil
}

func (s *CouponAdminService) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.coupons == nil {
		return ErrCouponAdminUnavailable
	}
	err := s.coupons.Delete(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrCouponNotFound
	}
	return err
}

func validateCoupon(coupon *models.Coupon) error {
	if coupon == nil {
		return UserError{Message: "Coupon details are required"}
	}
	if strings.TrimSpace(coupon.Code) == "" {
		return UserError{Message: "A coupon code is required"}
	}
	switch coupon.Type {
	case models.CouponPercentage:
		if coupon.Value <= 0 || coupon.Value > 100 {
			return UserError{Message: "Percentage discounts must be between 1 and 100"}
		}
	case models.CouponFixed:
		if coupon.Value <= 0 {
			return UserError{Message: "Fixed discounts must be a positive amount"}
		}
	default:
		return UserError{Message: "Coupon type must be percentage or fixed"}
	}
	if coupon.MinPurchaseKobo < 0 || coupon.MaxDiscountKobo < 0 {
		return UserError{Message: "Coupon amounts cannot be negative"}
	}
	if coupon.MaxUses < 0 || coupon.MaxUsesPerUser < 0 {
		return UserError{Message: "Usage limits cannot be negative"}
	}
	if !coupon.ValidFrom.IsZero() && !coupon.ValidUntil.IsZero() && coupon.ValidUntil.Before(coupon.ValidFrom) {
		return UserError{Message: "The coupon expiry must come after its start date"}
	}
	return nil
}
