package catalog

import (
	"strings"
	"testing"
)

func validCatalogFile() *CatalogFile {
	return &CatalogFile{
		Categories: []CategoryConfig{
			{Name: "Eau de Parfum", Slug: "eau-de-parfum"},
		},
		Brands: []BrandConfig{
			{Name: "Aniscents", Slug: "aniscents", Country: "NG"},
		},
		Products: []ProductConfig{
			{
				SKU:           "ANIS-OUD-50",
				Name:          "Royal Oud",
				Slug:          "royal-oud",
				Category:      "eau-de-parfum",
				Brand:         "aniscents",
				PriceKobo:     4500000,
				StockQuantity: 20,
				Available:     true,
			},
		},
		Coupons: []CouponConfig{
			{Code: "WELCOME10", Type: "percentage", Value: 10, Active: true},
		},
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(file *CatalogFile)
		wantErr string
	}{
		{
			name:   "valid catalog",
			mutate: func(file *CatalogFile) {},
		},
		{
			name: "no products",
			mutate: func(file *CatalogFile) {
				file.Products = nil
			},
			wantErr: "at least one product is required",
		},
		{
			name: "duplicate sku",
			mutate: func(file *CatalogFile) {
				file.Products = append(file.Products, file.Products[0])
			},
			wantErr: "duplicate SKU",
		},
		{
			name: "invalid slug",
			mutate: func(file *CatalogFile) {
				file.Products[0].Slug = "Royal Oud"
			},
			wantErr: "valid URL slug",
		},
		{
			name: "non-positive price",
			mutate: func(file *CatalogFile) {
				file.Products[0].PriceKobo = 0
			},
			wantErr: "price must be positive",
		},
		{
			name: "unknown category reference",
			mutate: func(file *CatalogFile) {
				file.Products[0].Category = "attars"
			},
			wantErr: "unknown category",
		},
		{
			name: "percentage coupon over 100",
			mutate: func(file *CatalogFile) {
				file.Coupons[0].Value = 150
			},
			wantErr: "cannot exceed 100",
		},
		{
			name: "unknown coupon type",
			mutate: func(file *CatalogFile) {
				file.Coupons[0].Type = "bogof"
			},
			wantErr: "percentage or fixed",
		},
		{
			name: "coupon targets unknown sku",
			mutate: func(file *CatalogFile) {
				file.Coupons[0].ProductSKUs = []string{"MISSING"}
			},
			wantErr: "unknown SKU",
		},
		{
			name: "bad coupon window",
			mutate: func(file *CatalogFile) {
				file.Coupons[0].ValidUntil = "next tuesday"
			},
			wantErr: "invalid valid_until",
		},
	}

	validator := NewValidator()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := validCatalogFile()
			tt.mutate(file)

			err := validator.Validate(file)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Errorf("expected error containing %q, got none", tt.wantErr)
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug string
		want bool
	}{
		{"royal-oud", true},
		{"oud", true},
		{"eau-de-parfum-50", true},
		{"", false},
		{"Royal-Oud", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}
