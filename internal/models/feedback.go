package models

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackStatus string

const (
	FeedbackNew      FeedbackStatus = "new"
	FeedbackReviewed FeedbackStatus = "reviewed"
	FeedbackResolved FeedbackStatus = "resolved"
)

type Feedback struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Email     string         `json:"email"`
	Status    FeedbackStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}
