package models

import "testing"

func TestProductInStock(t *testing.T) {
	t.Parallel()

	product := &Product{IsAvailable: true, StockQuantity: 3}
	if !product.InStock(3) {
		t.Fatal("expected full stock quantity to be available")
	}
	if product.InStock(4) {
		t.Fatal("expected request above stock to fail")
	}

	unavailable := &Product{IsAvailable: false, StockQuantity: 10}
	if unavailable.InStock(1) {
		t.Fatal("expected unavailable product to be out of stock")
	}

	var nilProduct *Product
	if nilProduct.InStock(1) {
		t.Fatal("expected nil product to be out of stock")
	}
}

func TestProductVariantInStock(t *testing.T) {
	t.Parallel()

	variant := &ProductVariant{IsActive: true, StockQuantity: 2}
	if !variant.InStock(2) {
		t.Fatal("expected full variant stock to be available")
	}
	if variant.InStock(3) {
		t.Fatal("expected request above variant stock to fail")
	}

	inactive := &ProductVariant{IsActive: false, StockQuantity: 5}
	if inactive.InStock(1) {
		t.Fatal("expected inactive variant to be out of stock")
	}

	var nilVariant *ProductVariant
	if nilVariant.InStock(1) {
		t.Fatal("expected nil variant to be out of stock")
	}
}

func TestProductVariantUnitPrice(t *testing.T) {
	t.Parallel()

	product := &Product{PriceKobo: 500000}

	priced := &ProductVariant{PriceKobo: 750000}
	if got := priced.UnitPrice(product); got != 750000 {
		t.Fatalf("expected variant price, got %d", got)
	}

	unpriced := &ProductVariant{}
	if got := unpriced.UnitPrice(product); got != 500000 {
		t.Fatalf("expected fallback to product price, got %d", got)
	}
}
