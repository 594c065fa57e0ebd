package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentMethodStore struct {
	pool *pgxpool.Pool
}

func NewPaymentMethodStore(pool *pgxpool.Pool) *PaymentMethodStore {
	return &PaymentMethodStore{pool: pool}
}

func (s *PaymentMethodStore) ListActive(ctx context.Context) ([]*PaymentMethod, error) {
	return s.list(ctx, true)
}

func (s *PaymentMethodStore) ListAll(ctx context.Context) ([]*PaymentMethod, error) {
	return s.list(ctx, false)
}

func (s *PaymentMethodStore) list(ctx context.Context, activeOnly bool) ([]*PaymentMethod, error) {
	query := `
		SELECT id, code, display_name, display_order, is_active, encrypted_credentials, created_at
		FROM payment_methods`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY display_order ASC, code ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*PaymentMethod
	for rows.Next() {
		var m PaymentMethod
		if err := rows.Scan(&m.ID, &m.Code, &m.DisplayName, &m.DisplayOrder, &m.IsActive, &m.EncryptedCredentials, &m.CreatedAt); err != nil {
			return nil, err
		}
		methods = append(methods, &m)
	}
	return methods, rows.Err()
}

func (s *PaymentMethodStore) GetByCode(ctx context.Context, code string) (*PaymentMethod, error) {
	var m PaymentMethod
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, display_name, display_order, is_active, encrypted_credentials, created_at
		FROM payment_methods WHERE code = $1`, code).
		Scan(&m.ID, &m.Code, &m.DisplayName, &m.DisplayOrder, &m.IsActive, &m.EncryptedCredentials, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PaymentMethodStore) Upsert(ctx context.Context, m *PaymentMethod) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO payment_methods (id, code, display_name, display_order, is_active, encrypted_credentials)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO UPDATE SET
			display_name = EXCLUDED.display_name, display_order = EXCLUDED.display_order,
			is_active = EXCLUDED.is_active, encrypted_credentials = EXCLUDED.encrypted_credentials
		RETURNING id, created_at`,
		m.ID, m.Code, m.DisplayName, m.DisplayOrder, m.IsActive, m.EncryptedCredentials,
	).Scan(&m.ID, &m.CreatedAt)
}

func (s *PaymentMethodStore) Delete(ctx context.Context, code string) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM payment_methods WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
