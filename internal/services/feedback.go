package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var ErrFeedbackUnavailable = errors.New("feedback service unavailable")

var feedbackTypes = map[string]bool{
	"general":    true,
	"complaint":  true,
	"suggestion": true,
	"praise":     true,
}

type FeedbackService struct {
	feedback *db.FeedbackStore
	logger   *slog.Logger
}

func NewFeedbackService(feedback *db.FeedbackStore, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{feedback: feedback, logger: logger}
}

type SubmitFeedbackInput struct {
	Type    string
	Message string
	Email   string
}

func (s *FeedbackService) Submit(ctx context.Context, input SubmitFeedbackInput) (*models.Feedback, error) {
	if s == nil || s.feedback == nil {
		return nil, ErrFeedbackUnavailable
	}

	kind := strings.ToLower(strings.TrimSpace(input.Type))
	if kind == "" {
		kind = "general"
	}
	if !feedbackTypes[kind] {
		return nil, UserError{Message: "Unknown feedback type"}
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, UserError{Message: "A message is required"}
	}

	fb := &models.Feedback{
		Type:    kind,
		Message: message,
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Status:  models.FeedbackNew,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	logging.FromContext(ctx, s.logger).Info("feedback received", "feedback_id", fb.ID, "type", kind)
	return fb, nil
}

func (s *FeedbackService) List(ctx context.Context, limit int) ([]*models.Feedback, error) {
	if s == nil || s.feedback == nil {
		return nil, ErrFeedbackUnavailable
	}
	return s.feedback.List(ctx, limit)
}

func (s *FeedbackService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.FeedbackStatus) error {
	if s == nil || s.feedback == nil {
		return ErrFeedbackUnavailable
	}
	switch status {
	case models.FeedbackNew, models.FeedbackReviewed, models.FeedbackResolved:
	default:
		return UserError{Message: "Unknown feedback status"}
	}
	return s.feedback.UpdateStatus(ctx, id, string(status))
}
