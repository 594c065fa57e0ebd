package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/models"
)

func TestContentService_SaveValidatesInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		block   models.ContentBlock
		wantMsg string
	}{
		{
			name:    "missing key",
			block:   models.ContentBlock{Title: "Hero"},
			wantMsg: "key is required",
		},
		{
			name:    "key with spaces",
			block:   models.ContentBlock{Key: "hero banner", Title: "Hero"},
			wantMsg: "letters, digits, hyphens",
		},
		{
			name:    "missing title",
			block:   models.ContentBlock{Key: "hero"},
			wantMsg: "title is required",
		},
	}

	svc := NewContentService(&db.ContentStore{}, nil)

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block := tt.block
			err := svc.Save(t.Context(), &block)

			var userErr UserError
			if !errors.As(err, &userErr) {
				t.Fatalf("expected a user error, got %v", err)
			}
			if !strings.Contains(userErr.Message, tt.wantMsg) {
				t.Fatalf("expected message containing %q, got %q", tt.wantMsg, userErr.Message)
			}
		})
	}
}

func TestContentService_SubscribeRejectsBadEmail(t *testing.T) {
	t.Parallel()

	svc := NewContentService(&db.ContentStore{}, nil)

	for _, input := range []string{"", "   ", "not-an-email"} {
		err := svc.Subscribe(t.Context(), input)

		var userErr UserError
		if !errors.As(err, &userErr) {
			t.Fatalf("Subscribe(%q): expected a user error, got %v", input, err)
		}
	}
}

func TestContentService_NilService(t *testing.T) {
	t.Parallel()

	var svc *ContentService
	if _, err := svc.Blocks(t.Context()); !errors.Is(err, ErrContentUnavailable) {
		t.Fatalf("expected ErrContentUnavailable, got %v", err)
	}
	if err := svc.Subscribe(t.Context(), "ada@example.com"); !errors.Is(err, ErrContentUnavailable) {
		t.Fatalf("expected ErrContentUnavailable, got %v", err)
	}
}

func TestNormalizeContentKey(t *testing.T) {
	t.Parallel()

	if got := normalizeContentKey("  Hero-Banner "); got != "hero-banner" {
		t.Fatalf("expected hero-banner, got %q", got)
	}
	if !validContentKey("promo_banner-2") {
		t.Fatal("expected promo_banner-2 to be a valid key")
	}
	if validContentKey("hero banner") {
		t.Fatal("expected key with a space to be invalid")
	}
}
