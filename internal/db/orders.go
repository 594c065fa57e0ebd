package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aniscentsapp/aniscents/internal/models"
)

var ErrInvalidStatusTransition = errors.New("invalid order status transition")

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Pool exposes the underlying pool for multi-store transactions.
func (s *OrderStore) Pool() *pgxpool.Pool {
	return s.pool
}

const orderColumns = `
	id, order_number, user_id, customer_email, customer_name, customer_phone,
	shipping_address, billing_address, status, payment_status,
	subtotal_kobo, shipping_kobo, tax_kobo, gift_wrap_kobo, discount_kobo, total_kobo,
	currency, coupon_id, coupon_code, shipping_method,
	tracking_number, tracking_carrier, customer_note, internal_note,
	created_at, paid_at, confirmed_at, shipped_at, delivered_at, cancelled_at`

// Create inserts the order row. Runs inside the checkout transaction.
func (s *OrderStore) Create(ctx context.Context, q Querier, order *Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	shippingJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}
	billingJSON, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return err
	}
	var userID any
	if order.UserID > 0 {
		userID = order.UserID
	}
	var couponID any
	if order.CouponID != uuid.Nil {
		couponID = order.CouponID
	}
	return q.QueryRow(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, customer_email, customer_name, customer_phone,
			shipping_address, billing_address, status, payment_status,
			subtotal_kobo, shipping_kobo, tax_kobo, gift_wrap_kobo, discount_kobo, total_kobo,
			currency, coupon_id, coupon_code, shipping_method, customer_note
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
		RETURNING created_at`,
		order.ID, order.OrderNumber, userID, order.CustomerEmail, order.CustomerName, order.CustomerPhone,
		shippingJSON, billingJSON, order.Status, order.PaymentStatus,
		order.SubtotalKobo, order.ShippingKobo, order.TaxKobo, order.GiftWrapKobo, order.DiscountKobo, order.TotalKobo,
		order.Currency, couponID, order.CouponCode, order.ShippingMethod, order.CustomerNote,
	).Scan(&order.CreatedAt)
}

// InsertItem snapshots one cart line. Runs inside the checkout transaction.
func (s *OrderStore) InsertItem(ctx context.Context, q Querier, item *OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO order_items (
			id, order_id, product_id, variant_id, product_name, product_sku,
			variant_label, unit_price_kobo, quantity, total_kobo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.OrderID, item.ProductID, item.VariantID, item.ProductName, item.ProductSKU,
		item.VariantLabel, item.UnitPriceKobo, item.Quantity, item.TotalKobo)
	return err
}

func (s *OrderStore) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
	return scanOrder(row)
}

func (s *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (s *OrderStore) Items(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product_id, variant_id, product_name, product_sku,
			variant_label, unit_price_kobo, quantity, total_kobo
		FROM order_items WHERE order_id = $1
		ORDER BY product_name ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*OrderItem
	for rows.Next() {
		var item OrderItem
		var variantID pgtype.UUID
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &variantID, &item.ProductName, &item.ProductSKU,
			&item.VariantLabel, &item.UnitPriceKobo, &item.Quantity, &item.TotalKobo,
		); err != nil {
			return nil, err
		}
		if variantID.Valid {
			item.VariantID = variantID.Bytes
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (s *OrderStore) ListByUser(ctx context.Context, userID int64, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT`+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (s *OrderStore) List(ctx context.Context, status OrderStatus, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT` + orderColumns + ` FROM orders`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

// MarkPaid flips payment status to paid, stamps paid_at, and promotes a
// pending order to confirmed. Only a pending payment can become paid.
func (s *OrderStore) MarkPaid(ctx context.Context, q Querier, orderID uuid.UUID) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'paid', paid_at = NOW(),
			status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END,
			confirmed_at = CASE WHEN status = 'pending' THEN NOW() ELSE confirmed_at END
		WHERE id = $1 AND payment_status = 'pending'`,
		orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected payment_status pending", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders SET payment_status = 'failed'
		WHERE id = $1 AND payment_status = 'pending'`,
		orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected payment_status pending", ErrInvalidStatusTransition)
	}
	return nil
}

// ResetPaymentPending reopens a failed payment so a new attempt can start.
func (s *OrderStore) ResetPaymentPending(ctx context.Context, orderID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders SET payment_status = 'pending'
		WHERE id = $1 AND payment_status = 'failed'`,
		orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected payment_status failed", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkPaymentRefunded(ctx context.Context, q Querier, orderID uuid.UUID) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE orders SET payment_status = 'refunded', status = 'refunded'
		WHERE id = $1 AND payment_status = 'paid'`,
		orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected payment_status paid", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkProcessing(ctx context.Context, orderID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders SET status = 'processing'
		WHERE id = $1 AND status = 'confirmed'`,
		orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected confirmed", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber, carrier string) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET status = 'shipped', tracking_number = $2, tracking_carrier = $3, shipped_at = NOW()
		WHERE id = $1 AND status IN ('confirmed', 'processing')`,
		orderID, trackingNumber, carrier)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected confirmed/processing", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders SET status = 'delivered', delivered_at = NOW()
		WHERE id = $1 AND status = 'shipped'`,
		orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected shipped", ErrInvalidStatusTransition)
	}
	return nil
}

// Cancel is allowed while the order has not shipped.
func (s *OrderStore) Cancel(ctx context.Context, q Querier, orderID uuid.UUID) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE orders SET status = 'cancelled', cancelled_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'confirmed', 'processing')`,
		orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected pending/confirmed/processing", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) MarkFailed(ctx context.Context, orderID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders SET status = 'failed'
		WHERE id = $1 AND status IN ('pending', 'confirmed', 'processing')`,
		orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected pending/confirmed/processing", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) UpdateTracking(ctx context.Context, orderID uuid.UUID, trackingNumber, carrier string) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE orders SET tracking_number = $2, tracking_carrier = $3
		WHERE id = $1 AND status = 'shipped'`,
		orderID, trackingNumber, carrier)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expected shipped", ErrInvalidStatusTransition)
	}
	return nil
}

func (s *OrderStore) SetInternalNote(ctx context.Context, orderID uuid.UUID, note string) error {
	_, err := s.pool.Exec(ctx, `UPDATE orders SET internal_note = $2 WHERE id = $1`, orderID, note)
	return err
}

// Delete removes an order; only cancelled orders qualify.
func (s *OrderStore) Delete(ctx context.Context, orderID uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `
		DELETE FROM orders WHERE id = $1 AND status = 'cancelled'`, orderID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: only cancelled orders can be deleted", ErrInvalidStatusTransition)
	}
	return nil
}

// HasPurchasedProduct backs the verified purchase flag on reviews.
func (s *OrderStore) HasPurchasedProduct(ctx context.Context, userID int64, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.payment_status = 'paid'
		)`,
		userID, productID).Scan(&exists)
	return exists, err
}

// HasPaidOrders backs the first-order-only coupon check.
func (s *OrderStore) HasPaidOrders(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE user_id = $1 AND payment_status = 'paid')`,
		userID).Scan(&exists)
	return exists, err
}

func (s *OrderStore) CountByStatus(ctx context.Context) (map[OrderStatus]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[OrderStatus]int64)
	for rows.Next() {
		var status OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Revenue sums the totals of paid orders.
func (s *OrderStore) Revenue(ctx context.Context) (int64, error) {
	var revenue int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_kobo), 0) FROM orders WHERE payment_status = 'paid'`).Scan(&revenue)
	return revenue, err
}

type ProductSales struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitsSold   int64     `json:"units_sold"`
	RevenueKobo int64     `json:"revenue_kobo"`
}

func (s *OrderStore) TopProducts(ctx context.Context, limit int) ([]*ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT oi.product_id, oi.product_name, SUM(oi.quantity), SUM(oi.total_kobo)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.payment_status = 'paid'
		GROUP BY oi.product_id, oi.product_name
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*ProductSales
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.ProductName, &ps.UnitsSold, &ps.RevenueKobo); err != nil {
			return nil, err
		}
		sales = append(sales, &ps)
	}
	return sales, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var userID pgtype.Int8
	var couponID pgtype.UUID
	var shippingJSON, billingJSON []byte
	var paidAt, confirmedAt, shippedAt, deliveredAt, cancelledAt pgtype.Timestamptz
	err := row.Scan(
		&o.ID, &o.OrderNumber, &userID, &o.CustomerEmail, &o.CustomerName, &o.CustomerPhone,
		&shippingJSON, &billingJSON, &o.Status, &o.PaymentStatus,
		&o.SubtotalKobo, &o.ShippingKobo, &o.TaxKobo, &o.GiftWrapKobo, &o.DiscountKobo, &o.TotalKobo,
		&o.Currency, &couponID, &o.CouponCode, &o.ShippingMethod,
		&o.TrackingNumber, &o.TrackingCarrier, &o.CustomerNote, &o.InternalNote,
		&o.CreatedAt, &paidAt, &confirmedAt, &shippedAt, &deliveredAt, &cancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		o.UserID = userID.Int64
	}
	if couponID.Valid {
		o.CouponID = couponID.Bytes
	}
	if len(shippingJSON) > 0 {
		if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
			return nil, err
		}
	}
	if len(billingJSON) > 0 {
		if err := json.Unmarshal(billingJSON, &o.BillingAddress); err != nil {
			return nil, err
		}
	}
	if paidAt.Valid {
		o.PaidAt = paidAt.Time
	}
	if confirmedAt.Valid {
		o.ConfirmedAt = confirmedAt.Time
	}
	if shippedAt.Valid {
		o.ShippedAt = shippedAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = deliveredAt.Time
	}
	if cancelledAt.Valid {
		o.CancelledAt = cancelledAt.Time
	}
	return &o, nil
}

func scanOrders(rows pgx.Rows) ([]*Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
