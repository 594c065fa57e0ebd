package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var (
	ErrReviewUnavailable = errors.New("review service unavailable")
	ErrReviewNotFound    = errors.New("review not found")
)

type ReviewService struct {
	reviews  *db.ReviewStore
	products *db.ProductStore
	orders   *db.OrderStore
	logger   *slog.Logger
}

func NewReviewService(reviews *db.ReviewStore, products *db.ProductStore, orders *db.OrderStore, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		orders:   orders,
		logger:   logger,
	}
}

type SubmitReviewInput struct {
	ProductID uuid.UUID
	Rating    int
	Title     string
	Comment   string
}

// Submit stores a review awaiting moderation. One review per user per
// product; the verified purchase flag is derived, not client-supplied.
func (s *ReviewService) Submit(ctx context.Context, userID int64, input SubmitReviewInput) (*models.Review, error) {
	if s == nil || s.reviews == nil || s.orders == nil {
		return nil, ErrReviewUnavailable
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, UserError{Message: "Rating must be between 1 and 5"}
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	verified, err := s.orders.HasPurchasedProduct(ctx, userID, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}

	review := &models.Review{
		ProductID:        input.ProductID,
		UserID:           userID,
		Rating:           input.Rating,
		Title:            strings.TrimSpace(input.Title),
		Comment:          strings.TrimSpace(input.Comment),
		VerifiedPurchase: verified,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, db.ErrDuplicateReview) {
			return nil, UserError{Message: "You have already reviewed this product"}
		}
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	logging.FromContext(ctx, s.logger).Info("review submitted",
		"review_id", review.ID, "product_id", input.ProductID, "verified", verified)
	return review, nil
}

func (s *ReviewService) ListApproved(ctx context.Context, productID uuid.UUID) ([]*models.Review, error) {
	if s == nil || s.reviews == nil {
		return nil, ErrReviewUnavailable
	}
	return s.reviews.ListApprovedByProduct(ctx, productID)
}

func (s *ReviewService) ListPending(ctx context.Context) ([]*models.Review, error) {
	if s == nil || s.reviews == nil {
		return nil, ErrReviewUnavailable
	}
	return s.reviews.ListPending(ctx)
}

// Approve publishes a review and recomputes the product's rating summary in
// the same transaction.
func (s *ReviewService) Approve(ctx context.Context, reviewID uuid.UUID) error {
	if s == nil || s.reviews == nil || s.products == nil {
		return ErrReviewUnavailable
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load review: %w", err)
	}

	return db.WithTx(ctx, s.reviews.Pool(), func(tx pgx.Tx) error {
		if err := s.reviews.Approve(ctx, tx, reviewID); err != nil {
			return err
		}
		return s.products.UpdateRating(ctx, tx, review.ProductID)
	})
}
