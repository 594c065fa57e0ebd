package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var (
	ErrContentUnavailable = errors.New("content service unavailable")
	ErrContentNotFound    = errors.New("content block not found")
)

// ContentService manages staff-editable storefront copy and newsletter signups.
type ContentService struct {
	content *db.ContentStore
	logger  *slog.Logger
}

func NewContentService(content *db.ContentStore, logger *slog.Logger) *ContentService {
	return &ContentService{content: content, logger: logger}
}

// Blocks lists the active content blocks in display order.
func (s *ContentService) Blocks(ctx context.Context) ([]*models.ContentBlock, error) {
	if s == nil || s.content == nil {
		return nil, ErrContentUnavailable
	}
	return s.content.ListActive(ctx)
}

func (s *ContentService) Block(ctx context.Context, key string) (*models.ContentBlock, error) {
	if s == nil || s.content == nil {
		return nil, ErrContentUnavailable
	}
	block, err := s.content.GetByKey(ctx, normalizeContentKey(key))
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load content block: %w", err)
	}
	return block, nil
}

func (s *ContentService) All(ctx context.Context) ([]*models.ContentBlock, error) {
	if s == nil || s.content == nil {
		return nil, ErrContentUnavailable
	}
	return s.content.ListAll(ctx)
}

// Save validates and upserts a block under its key.
func (s *ContentService) Save(ctx context.Context, block *models.ContentBlock) error {
	if s == nil || s.content == nil {
		return ErrContentUnavailable
	}
	if block == nil {
		return UserError{Message: "A content block is required"}
	}

	block.Key = normalizeContentKey(block.Key)
	if block.Key == "" {
		return UserError{Message: "A content key is required"}
	}
	if !validContentKey(block.Key) {
		return UserError{Message: "Content keys may only contain letters, digits, hyphens, and underscores"}
	}
	block.Title = strings.TrimSpace(block.Title)
	if block.Title == "" {
		return UserError{Message: "A title is required"}
	}

	if err := s.content.Upsert(ctx, block); err != nil {
		return fmt.Errorf("failed to save content block: %w", err)
	}
	logging.FromContext(ctx, s.logger).Info("content block saved", "key", block.Key)
	return nil
}

func (s *ContentService) Delete(ctx context.Context, key string) error {
	if s == nil || s.content == nil {
		return ErrContentUnavailable
	}
	if err := s.content.Delete(ctx, normalizeContentKey(key)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrContentNotFound
		}
		return fmt.Errorf("failed to delete content block: %w", err)
	}
	logging.FromContext(ctx, s.logger).Info("content block deleted", "key", key)
	return nil
}

// Subscribe records a newsletter signup. Repeat signups succeed quietly so the
// endpoint stays idempotent and leaks nothing about existing subscribers.
func (s *ContentService) Subscribe(ctx context.Context, emailAddr string) error {
	if s == nil || s.content == nil {
		return ErrContentUnavailable
	}

	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return UserError{Message: "A valid email address is required"}
	}

	_, err := s.content.Subscribe(ctx, emailAddr)
	if errors.Is(err, db.ErrDuplicateSubscriber) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to record subscription: %w", err)
	}
	logging.FromContext(ctx, s.logger).Info("newsletter subscription recorded")
	return nil
}

func (s *ContentService) Subscribers(ctx context.Context, limit int) ([]*models.NewsletterSubscriber, error) {
	if s == nil || s.content == nil {
		return nil, ErrContentUnavailable
	}
	return s.content.Subscribers(ctx, limit)
}

func normalizeContentKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func validContentKey(key string) bool {
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
