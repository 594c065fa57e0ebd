package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartStore struct {
	pool *pgxpool.Pool
}

func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

func (s *CartStore) Pool() *pgxpool.Pool {
	return s.pool
}

const cartSelect = `
	SELECT id, user_id, session_key, coupon_id, gift_wrap, gift_wrap_kobo,
		shipping_method, shipping_kobo, is_active, created_at, updated_at
	FROM carts`

func (s *CartStore) GetActiveByUser(ctx context.Context, userID int64) (*Cart, error) {
	row := s.pool.QueryRow(ctx, cartSelect+` WHERE user_id = $1 AND is_active = TRUE`, userID)
	return scanCart(row)
}

func (s *CartStore) GetActiveBySession(ctx context.Context, sessionKey string) (*Cart, error) {
	row := s.pool.QueryRow(ctx, cartSelect+` WHERE session_key = $1 AND is_active = TRUE`, sessionKey)
	return scanCart(row)
}

func (s *CartStore) GetByID(ctx context.Context, id uuid.UUID) (*Cart, error) {
	row := s.pool.QueryRow(ctx, cartSelect+` WHERE id = $1`, id)
	return scanCart(row)
}

// Create inserts a cart owned by either a user or an anonymous session key.
func (s *CartStore) Create(ctx context.Context, cart *Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	var userID any
	if cart.UserID > 0 {
		userID = cart.UserID
	}
	var sessionKey any
	if cart.SessionKey != "" {
		sessionKey = cart.SessionKey
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO carts (id, user_id, session_key, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING created_at, updated_at`,
		cart.ID, userID, sessionKey,
	).Scan(&cart.CreatedAt, &cart.UpdatedAt)
}

func (s *CartStore) Items(ctx context.Context, cartID uuid.UUID) ([]*CartItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.variant_id,
			p.name, p.sku, COALESCE(p.category_id, '00000000-0000-0000-0000-000000000000'),
			ci.unit_price_kobo, ci.quantity, ci.added_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at ASC`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.VariantID,
			&item.ProductName, &item.ProductSKU, &item.CategoryID,
			&item.UnitPriceKobo, &item.Quantity, &item.AddedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// AddItem upserts a line: a repeated add of the same product+variant
// increments the quantity instead of creating a second row.
func (s *CartStore) AddItem(ctx context.Context, item *CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, variant_id, unit_price_kobo, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id, variant_id) DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			unit_price_kobo = EXCLUDED.unit_price_kobo
		RETURNING id, quantity, added_at`,
		item.ID, item.CartID, item.ProductID, item.VariantID, item.UnitPriceKobo, item.Quantity,
	).Scan(&item.ID, &item.Quantity, &item.AddedAt)
}

// UpdateItemQuantity sets the quantity; zero or negative removes the line.
func (s *CartStore) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $1
		WHERE id = $2 AND cart_id = $3`,
		quantity, itemID, cartID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CartStore) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CartStore) ClearItems(ctx context.Context, q Querier, cartID uuid.UUID) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (s *CartStore) SetCoupon(ctx context.Context, cartID, couponID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE carts SET coupon_id = $1, updated_at = NOW() WHERE id = $2`,
		couponID, cartID)
	return err
}

func (s *CartStore) ClearCoupon(ctx context.Context, cartID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE carts SET coupon_id = NULL, updated_at = NOW() WHERE id = $1`,
		cartID)
	return err
}

func (s *CartStore) SetGiftWrap(ctx context.Context, cartID uuid.UUID, enabled bool, feeKobo int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE carts SET gift_wrap = $1, gift_wrap_kobo = $2, updated_at = NOW() WHERE id = $3`,
		enabled, feeKobo, cartID)
	return err
}

func (s *CartStore) SetShipping(ctx context.Context, cartID uuid.UUID, method string, feeKobo int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE carts SET shipping_method = $1, shipping_kobo = $2, updated_at = NOW() WHERE id = $3`,
		method, feeKobo, cartID)
	return err
}

func (s *CartStore) Deactivate(ctx context.Context, q Querier, cartID uuid.UUID) error {
	_, err := q.Exec(ctx, `
		UPDATE carts SET is_active = FALSE, updated_at = NOW() WHERE id = $1`,
		cartID)
	return err
}

// Merge folds the session cart into the user cart inside one transaction:
// matching product+variant lines sum their quantities, then the session cart
// is emptied and deactivated.
func (s *CartStore) Merge(ctx context.Context, sessionCartID, userCartID uuid.UUID) error {
	return WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO cart_items (id, cart_id, product_id, variant_id, unit_price_kobo, quantity)
			SELECT gen_random_uuid(), $1, product_id, variant_id, unit_price_kobo, quantity
			FROM cart_items
			WHERE cart_id = $2
			ON CONFLICT (cart_id, product_id, variant_id) DO UPDATE SET
				quantity = cart_items.quantity + EXCLUDED.quantity`,
			userCartID, sessionCartID)
		if err != nil {
			return err
		}
		if err := s.ClearItems(ctx, tx, sessionCartID); err != nil {
			return err
		}
		return s.Deactivate(ctx, tx, sessionCartID)
	})
}

func scanCart(row pgx.Row) (*Cart, error) {
	var c Cart
	var userID pgtype.Int8
	var sessionKey pgtype.Text
	var couponID pgtype.UUID
	err := row.Scan(
		&c.ID, &userID, &sessionKey, &couponID, &c.GiftWrap, &c.GiftWrapKobo,
		&c.ShippingMethod, &c.ShippingKobo, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		c.UserID = userID.Int64
	}
	if sessionKey.Valid {
		c.SessionKey = sessionKey.String
	}
	if couponID.Valid {
		c.CouponID = couponID.Bytes
	}
	return &c, nil
}
