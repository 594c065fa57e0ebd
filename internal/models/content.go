package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentBlock is a staff-editable piece of storefront copy keyed by where it
// renders (hero, promo banner, footer, about page).
type ContentBlock struct {
	ID           uuid.UUID `json:"id"`
	Key          string    `json:"key"`
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	Body         string    `json:"body"`
	ImageURL     string    `json:"image_url"`
	LinkURL      string    `json:"link_url"`
	LinkText     string    `json:"link_text"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type NewsletterSubscriber struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
