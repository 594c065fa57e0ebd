package catalog

import (
	"testing"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid catalog",
			yaml: `
categories:
  - name: "Eau de Parfum"
    slug: "eau-de-parfum"
brands:
  - name: "Aniscents"
    slug: "aniscents"
    country: "NG"
products:
  - sku: "ANIS-OUD-50"
    name: "Royal Oud"
    slug: "royal-oud"
    description: "A woody oud fragrance"
    category: "eau-de-parfum"
    brand: "aniscents"
    price_kobo: 4500000
    stock_quantity: 20
    concentration: "EDP"
    size_ml: 50
    available: true
    variants:
      - sku: "ANIS-OUD-100"
        size_ml: 100
        price_kobo: 7800000
        stock_quantity: 10
coupons:
  - code: "WELCOME10"
    type: "percentage"
    value: 10
    max_discount_kobo: 500000
    active: true
`,
			wantErr: false,
		},
		{
			name:    "invalid yaml",
			yaml:    "invalid: yaml: content:",
			wantErr: true,
		},
	}

	parser := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parser.ParseFromString(tt.yaml)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if file == nil {
				t.Error("expected catalog file but got nil")
				return
			}

			if len(file.Products) != 1 {
				t.Errorf("expected 1 product, got %d", len(file.Products))
			}

			product := file.Products[0]
			if product.SKU != "ANIS-OUD-50" {
				t.Errorf("expected SKU 'ANIS-OUD-50', got '%s'", product.SKU)
			}
			if product.PriceKobo != 4500000 {
				t.Errorf("expected price 4500000, got %d", product.PriceKobo)
			}
			if len(product.Variants) != 1 {
				t.Errorf("expected 1 variant, got %d", len(product.Variants))
			}

			if len(file.Coupons) != 1 {
				t.Errorf("expected 1 coupon, got %d", len(file.Coupons))
			}
		})
	}
}
