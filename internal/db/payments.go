package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aniscentsapp/aniscents/internal/models"
)

type PaymentStore struct {
	pool *pgxpool.Pool
}

func NewPaymentStore(pool *pgxpool.Pool) *PaymentStore {
	return &PaymentStore{pool: pool}
}

const paymentSelect = `
	SELECT id, order_id, gateway, reference, gateway_reference, amount_kobo, currency,
		status, card_last4, card_brand, failure_reason, refunded_kobo,
		initiated_at, completed_at
	FROM payments`

func (s *PaymentStore) Create(ctx context.Context, payment *Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO payments (id, order_id, gateway, reference, amount_kobo, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING initiated_at`,
		payment.ID, payment.OrderID, payment.Gateway, payment.Reference,
		payment.AmountKobo, payment.Currency, payment.Status,
	).Scan(&payment.InitiatedAt)
}

func (s *PaymentStore) GetByReference(ctx context.Context, reference string) (*Payment, error) {
	row := s.pool.QueryRow(ctx, paymentSelect+` WHERE reference = $1`, reference)
	return scanPayment(row)
}

func (s *PaymentStore) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error) {
	rows, err := s.pool.Query(ctx, paymentSelect+` WHERE order_id = $1 ORDER BY initiated_at DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// SetGatewayReference stores the provider-side reference issued at initialization.
func (s *PaymentStore) SetGatewayReference(ctx context.Context, paymentID uuid.UUID, gatewayReference string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE payments SET gateway_reference = $2 WHERE id = $1`,
		paymentID, gatewayReference)
	return err
}

// MarkSuccessful records gateway confirmation. Only a non-terminal payment
// can succeed; a replayed confirmation is rejected by the guard.
func (s *PaymentStore) MarkSuccessful(ctx context.Context, q Querier, paymentID uuid.UUID, gatewayReference, cardLast4, cardBrand string) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE payments
		SET status = 'successful', gateway_reference = $2, card_last4 = $3, card_brand = $4, completed_at = NOW()
		WHERE id = $1 AND status IN ('initiated', 'pending')`,
		paymentID, gatewayReference, cardLast4, cardBrand)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

func (s *PaymentStore) MarkFailed(ctx context.Context, paymentID uuid.UUID, reason string) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE payments SET status = 'failed', failure_reason = $2, completed_at = NOW()
		WHERE id = $1 AND status IN ('initiated', 'pending')`,
		paymentID, reason)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

func (s *PaymentStore) MarkRefunded(ctx context.Context, q Querier, paymentID uuid.UUID, refundedKobo int64) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE payments SET status = 'refunded', refunded_kobo = $2
		WHERE id = $1 AND status = 'successful'`,
		paymentID, refundedKobo)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p models.Payment
	var completedAt pgtype.Timestamptz
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Gateway, &p.Reference, &p.GatewayReference, &p.AmountKobo, &p.Currency,
		&p.Status, &p.CardLast4, &p.CardBrand, &p.FailureReason, &p.RefundedKobo,
		&p.InitiatedAt, &completedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		p.CompletedAt = completedAt.Time
	}
	return &p, nil
}
