package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateReview = errors.New("user already reviewed this product")

type ReviewStore struct {
	pool *pgxpool.Pool
}

func NewReviewStore(pool *pgxpool.Pool) *ReviewStore {
	return &ReviewStore{pool: pool}
}

// Pool exposes the underlying pool for multi-store transactions.
func (s *ReviewStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *ReviewStore) Create(ctx context.Context, review *Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, title, comment, verified_purchase, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		ON CONFLICT (product_id, user_id) DO NOTHING
		RETURNING created_at`,
		review.ID, review.ProductID, review.UserID, review.Rating,
		review.Title, review.Comment, review.VerifiedPurchase,
	).Scan(&review.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateReview
	}
	return err
}

func (s *ReviewStore) ListApprovedByProduct(ctx context.Context, productID uuid.UUID) ([]*Review, error) {
	rows, err := s.pool.Query(ctx, reviewSelect+`
		WHERE product_id = $1 AND is_approved = TRUE
		ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReviews(rows)
}

func (s *ReviewStore) ListPending(ctx context.Context) ([]*Review, error) {
	rows, err := s.pool.Query(ctx, reviewSelect+`
		WHERE is_approved = FALSE
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReviews(rows)
}

func (s *ReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	row := s.pool.QueryRow(ctx, reviewSelect+` WHERE id = $1`, id)
	review, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return review, err
}

func (s *ReviewStore) Approve(ctx context.Context, q Querier, id uuid.UUID) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE reviews SET is_approved = TRUE WHERE id = $1 AND is_approved = FALSE`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const reviewSelect = `
	SELECT id, product_id, user_id, rating, title, comment, verified_purchase, is_approved, created_at
	FROM reviews`

func scanReview(row pgx.Row) (*Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Comment,
		&r.VerifiedPurchase, &r.IsApproved, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReviews(rows pgx.Rows) ([]*Review, error) {
	var reviews []*Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
