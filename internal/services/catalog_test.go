package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/models"
)

func TestCatalogService_SaveProductValidatesInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		product models.Product
		wantMsg string
	}{
		{
			name:    "missing name",
			product: models.Product{SKU: "PRF-001", PriceKobo: 100000},
			wantMsg: "name is required",
		},
		{
			name:    "missing sku",
			product: models.Product{Name: "Oud Royale", PriceKobo: 100000},
			wantMsg: "SKU is required",
		},
		{
			name:    "zero price",
			product: models.Product{Name: "Oud Royale", SKU: "PRF-001"},
			wantMsg: "price must be greater than zero",
		},
		{
			name:    "negative stock",
			product: models.Product{Name: "Oud Royale", SKU: "PRF-001", PriceKobo: 100000, StockQuantity: -1},
			wantMsg: "cannot be negative",
		},
	}

	svc := NewCatalogService(&db.ProductStore{}, nil, nil, nil, nil, nil)

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			product := tt.product
			err := svc.SaveProduct(t.Context(), &product)

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

func TestCatalogService_NilService(t *testing.T) {
	t.Parallel()

	var svc *CatalogService
	if _, err := svc.Browse(t.Context(), BrowseInput{}); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if err := svc.SaveProduct(t.Context(), &models.Product{}); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Oud Royale", "oud-royale"},
		{"  Amber & Musk  ", "amber-musk"},
		{"No.5 Eau de Parfum", "no-5-eau-de-parfum"},
		{"---", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := slugify(tt.in); got != tt.want {
				t.Fatalf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
