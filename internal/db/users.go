package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateEmail = errors.New("email already registered")

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Create(ctx context.Context, user *User) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, is_staff, is_active)
		VALUES (LOWER($1), $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at`,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.IsStaff,
	).Scan(&user.ID, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.pool.QueryRow(ctx, userSelect+` WHERE email = LOWER($1)`, strings.TrimSpace(email))
	return scanUser(row)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*User, error) {
	row := s.pool.QueryRow(ctx, userSelect+` WHERE id = $1`, id)
	return scanUser(row)
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (s *UserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	return err
}

func (s *UserStore) UpdateProfile(ctx context.Context, user *User) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET
			first_name = $1, last_name = $2, phone = $3,
			address_line1 = $4, address_line2 = $5, address_city = $6,
			address_state = $7, address_postal_code = $8, address_country = $9
		WHERE id = $10`,
		user.FirstName, user.LastName, user.Phone,
		user.Address.Line1, user.Address.Line2, user.Address.City,
		user.Address.State, user.Address.PostalCode, user.Address.Country,
		user.ID)
	return err
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_staff = FALSE`).Scan(&count)
	return count, err
}

const userSelect = `
	SELECT id, email, password_hash, first_name, last_name, phone, is_staff, is_active,
		address_line1, address_line2, address_city, address_state, address_postal_code, address_country,
		created_at, last_login_at
	FROM users`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var lastLogin pgtype.Timestamptz
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.IsStaff, &u.IsActive,
		&u.Address.Line1, &u.Address.Line2, &u.Address.City, &u.Address.State, &u.Address.PostalCode, &u.Address.Country,
		&u.CreatedAt, &lastLogin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLoginAt = lastLogin.Time
	}
	return &u, nil
}
