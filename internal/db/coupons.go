package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCouponExhausted is returned when the atomic redemption guard finds the
// global usage cap already reached.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

var ErrDuplicateCode = errors.New("coupon code already exists")

type CouponStore struct {
	pool *pgxpool.Pool
}

func NewCouponStore(pool *pgxpool.Pool) *CouponStore {
	return &CouponStore{pool: pool}
}

const couponSelect = `
	SELECT id, code, description, type, value, min_purchase_kobo, max_discount_kobo,
		max_uses, max_uses_per_user, times_used, valid_from, valid_until,
		is_active, first_order_only, created_at
	FROM coupons`

func (s *CouponStore) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	row := s.pool.QueryRow(ctx, couponSelect+` WHERE UPPER(code) = UPPER($1)`, code)
	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadTargeting(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *CouponStore) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	row := s.pool.QueryRow(ctx, couponSelect+` WHERE id = $1`, id)
	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadTargeting(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *CouponStore) List(ctx context.Context) ([]*Coupon, error) {
	rows, err := s.pool.Query(ctx, couponSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []*Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, coupon := range coupons {
		if err := s.loadTargeting(ctx, coupon); err != nil {
			return nil, err
		}
	}
	return coupons, nil
}

func (s *CouponStore) Create(ctx context.Context, coupon *Coupon) error {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	return WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO coupons (
				id, code, description, type, value, min_purchase_kobo, max_discount_kobo,
				max_uses, max_uses_per_user, valid_from, valid_until, is_active, first_order_only
			) VALUES ($1, UPPER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (code) DO NOTHING
			RETURNING code, created_at`,
			coupon.ID, coupon.Code, coupon.Description, coupon.Type, coupon.Value,
			coupon.MinPurchaseKobo, coupon.MaxDiscountKobo, coupon.MaxUses, coupon.MaxUsesPerUser,
			coupon.ValidFrom, coupon.ValidUntil, coupon.IsActive, coupon.FirstOrderOnly,
		).Scan(&coupon.Code, &coupon.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDuplicateCode
		}
		if err != nil {
			return err
		}
		return s.saveTargeting(ctx, tx, coupon)
	})
}

func (s *CouponStore) Update(ctx context.Context, coupon *Coupon) error {
	return WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE coupons SET
				description = $1, type = $2, value = $3, min_purchase_kobo = $4,
				max_discount_kobo = $5, max_uses = $6, max_uses_per_user = $7,
				valid_from = $8, valid_until = $9, is_active = $10, first_order_only = $11
			WHERE id = $12`,
			coupon.Description, coupon.Type, coupon.Value, coupon.MinPurchaseKobo,
			coupon.MaxDiscountKobo, coupon.MaxUses, coupon.MaxUsesPerUser,
			coupon.ValidFrom, coupon.ValidUntil, coupon.IsActive, coupon.FirstOrderOnly,
			coupon.ID)
		if err != nil {
			return err
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return s.saveTargeting(ctx, tx, coupon)
	})
}

func (s *CouponStore) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UsageCountByUser counts redemptions of a coupon by one user.
func (s *CouponStore) UsageCountByUser(ctx context.Context, couponID uuid.UUID, userID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID).Scan(&count)
	return count, err
}

// Redeem performs the conditional increment that enforces the global usage
// cap. Zero max_uses means unlimited. A zero-row update means the cap was hit
// by a concurrent checkout; the surrounding transaction rolls back.
func (s *CouponStore) Redeem(ctx context.Context, q Querier, couponID uuid.UUID) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE coupons
		SET times_used = times_used + 1
		WHERE id = $1 AND (max_uses = 0 OR times_used < max_uses)`,
		couponID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: coupon %s", ErrCouponExhausted, couponID)
	}
	return nil
}

// RecordUsage writes the per-user redemption row inside the checkout transaction.
func (s *CouponStore) RecordUsage(ctx context.Context, q Querier, usage *CouponUsage) error {
	if usage.ID == uuid.Nil {
		usage.ID = uuid.New()
	}
	var userID any
	if usage.UserID > 0 {
		userID = usage.UserID
	}
	_, err := q.Exec(ctx, `
		INSERT INTO coupon_usages (id, coupon_id, user_id, order_id)
		VALUES ($1, $2, $3, $4)`,
		usage.ID, usage.CouponID, userID, usage.OrderID)
	return err
}

func (s *CouponStore) loadTargeting(ctx context.Context, coupon *Coupon) error {
	rows, err := s.pool.Query(ctx, `SELECT product_id FROM coupon_products WHERE coupon_id = $1`, coupon.ID)
	if err != nil {
		return err
	}
	coupon.ProductIDs, err = collectUUIDs(rows)
	if err != nil {
		return err
	}

	rows, err = s.pool.Query(ctx, `SELECT category_id FROM coupon_categories WHERE coupon_id = $1`, coupon.ID)
	if err != nil {
		return err
	}
	coupon.CategoryIDs, err = collectUUIDs(rows)
	return err
}

func (s *CouponStore) saveTargeting(ctx context.Context, tx pgx.Tx, coupon *Coupon) error {
	if _, err := tx.Exec(ctx, `DELETE FROM coupon_products WHERE coupon_id = $1`, coupon.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM coupon_categories WHERE coupon_id = $1`, coupon.ID); err != nil {
		return err
	}
	for _, productID := range coupon.ProductIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO coupon_products (coupon_id, product_id) VALUES ($1, $2)`,
			coupon.ID, productID); err != nil {
			return err
		}
	}
	for _, categoryID := range coupon.CategoryIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO coupon_categories (coupon_id, category_id) VALUES ($1, $2)`,
			coupon.ID, categoryID); err != nil {
			return err
		}
	}
	return nil
}

func scanCoupon(row pgx.Row) (*Coupon, error) {
	var c Coupon
	var validFrom, validUntil pgtype.Timestamptz
	err := row.Scan(
		&c.ID, &c.Code, &c.Description, &c.Type, &c.Value, &c.MinPurchaseKobo, &c.MaxDiscountKobo,
		&c.MaxUses, &c.MaxUsesPerUser, &c.TimesUsed, &validFrom, &validUntil,
		&c.IsActive, &c.FirstOrderOnly, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if validFrom.Valid {
		c.ValidFrom = validFrom.Time
	}
	if validUntil.Valid {
		c.ValidUntil = validUntil.Time
	}
	return &c, nil
}

func collectUUIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
