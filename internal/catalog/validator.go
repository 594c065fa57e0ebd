package catalog

// Package catalog provides catalog seed file validation.

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsValidSlug validates a URL slug (lowercase alphanumerics separated by single hyphens).
func IsValidSlug(slug string) bool {
	return slugRegex.MatchString(slug)
}

func (v *Validator) Validate(file *CatalogFile) error {
	categorySlugs := make(map[string]bool)
	for i, category := range file.Categories {
		if err := v.validateCategory(&category); err != nil {
			return fmt.Errorf("category %d validation failed: %w", i, err)
		}
		if categorySlugs[category.Slug] {
			return fmt.Errorf("duplicate category slug: %s", category.Slug)
		}
		categorySlugs[category.Slug] = true
	}

	brandSlugs := make(map[string]bool)
	for i, brand := range file.Brands {
		if err := v.validateBrand(&brand); err != nil {
			return fmt.Errorf("brand %d validation failed: %w", i, err)
		}
		if brandSlugs[brand.Slug] {
			return fmt.Errorf("duplicate brand slug: %s", brand.Slug)
		}
		brandSlugs[brand.Slug] = true
	}

	if len(file.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	skus := make(map[string]bool)
	for i, product := range file.Products {
		if err := v.validateProduct(&product, categorySlugs, brandSlugs); err != nil {
			return fmt.Errorf("product %d validation failed: %w", i, err)
		}
		if skus[product.SKU] {
			return fmt.Errorf("duplicate SKU: %s", product.SKU)
		}
		skus[product.SKU] = true
	}

	couponCodes := make(map[string]bool)
	for i, coupon := range file.Coupons {
		if err := v.validateCoupon(&coupon, skus, categorySlugs); err != nil {
			return fmt.Errorf("coupon %d validation failed: %w", i, err)
		}
		code := strings.ToUpper(coupon.Code)
		if couponCodes[code] {
			return fmt.Errorf("duplicate coupon code: %s", coupon.Code)
		}
		couponCodes[code] = true
	}

	return nil
}

func (v *Validator) validateCategory(category *CategoryConfig) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if !IsValidSlug(category.Slug) {
		return fmt.Errorf("category slug must be a valid URL slug")
	}
	return nil
}

func (v *Validator) validateBrand(brand *BrandConfig) error {
	if strings.TrimSpace(brand.Name) == "" {
		return fmt.Errorf("brand name is required")
	}
	if !IsValidSlug(brand.Slug) {
		return fmt.Errorf("brand slug must be a valid URL slug")
	}
	return nil
}

func (v *Validator) validateProduct(product *ProductConfig, categorySlugs, brandSlugs map[string]bool) error {
	if strings.TrimSpace(product.SKU) == "" {
		return fmt.Errorf("product SKU is required")
	}
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if !IsValidSlug(product.Slug) {
		return fmt.Errorf("product slug must be a valid URL slug")
	}
	if product.PriceKobo <= 0 {
		return fmt.Errorf("product price must be positive")
	}
	if product.StockQuantity < 0 {
		return fmt.Errorf("product stock must be zero or positive")
	}
	if product.Category != "" && !categorySlugs[product.Category] {
		return fmt.Errorf("product references unknown category: %s", product.Category)
	}
	if product.Brand != "" && !brandSlugs[product.Brand] {
		return fmt.Errorf("product references unknown brand: %s", product.Brand)
	}

	variantKeys := make(map[string]bool)
	for i, variant := range product.Variants {
		if err := v.validateVariant(&variant); err != nil {
			return fmt.Errorf("variant %d validation failed: %w", i, err)
		}
		key := fmt.Sprintf("%d/%s", variant.SizeML, variant.Concentration)
		if variantKeys[key] {
			return fmt.Errorf("duplicate variant size/concentration: %s", key)
		}
		variantKeys[key] = true
	}

	return nil
}

func (v *Validator) validateVariant(variant *VariantConfig) error {
	if strings.TrimSpace(variant.SKU) == "" {
		return fmt.Errorf("variant SKU is required")
	}
	if variant.SizeML <= 0 {
		return fmt.Errorf("variant size must be positive")
	}
	if variant.PriceKobo < 0 {
		return fmt.Errorf("variant price must be zero or positive")
	}
	return nil
}

func (v *Validator) validateCoupon(coupon *CouponConfig, skus, categorySlugs map[string]bool) error {
	if strings.TrimSpace(coupon.Code) == "" {
		return fmt.Errorf("coupon code is required")
	}
	if coupon.Type != "percentage" && coupon.Type != "fixed" {
		return fmt.Errorf("coupon type must be percentage or fixed")
	}
	if coupon.Value <= 0 {
		return fmt.Errorf("coupon value must be positive")
	}
	if coupon.Type == "percentage" && coupon.Value > 100 {
		return fmt.Errorf("percentage coupon value cannot exceed 100")
	}
	if coupon.MaxUses < 0 || coupon.MaxUsesPerUser < 0 {
		return fmt.Errorf("coupon usage limits must be zero or positive")
	}
	if _, err := ParseCouponWindow(coupon.ValidFrom); err != nil {
		return fmt.Errorf("invalid valid_from: %w", err)
	}
	if _, err := ParseCouponWindow(coupon.ValidUntil); err != nil {
		return fmt.Errorf("invalid valid_until: %w", err)
	}
	for _, sku := range coupon.ProductSKUs {
		if !skus[sku] {
			return fmt.Errorf("coupon references unknown SKU: %s", sku)
		}
	}
	for _, slug := range coupon.CategorySlugs {
		if !categorySlugs[slug] {
			return fmt.Errorf("coupon references unknown category: %s", slug)
		}
	}
	return nil
}

// ParseCouponWindow parses a coupon validity boundary. Empty means unbounded.
func ParseCouponWindow(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
